package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"jury-dashboard/database"
	"jury-dashboard/models"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/term"
)

var (
	adminUsername string
	adminEmail    string
	adminRole     string
)

var adminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Manage dashboard administrators",
}

var adminCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create an administrator",
	Long: `Create a dashboard administrator. The password is read from the
terminal without echo.

Example:
  jury-dashboard admin create --username ada --email ada@example.com`,
	RunE: runAdminCreate,
}

func init() {
	adminCreateCmd.Flags().StringVar(&adminUsername, "username", "", "login name")
	adminCreateCmd.Flags().StringVar(&adminEmail, "email", "", "email address")
	adminCreateCmd.Flags().StringVar(&adminRole, "role", "admin", "admin or super_admin")
	adminCreateCmd.MarkFlagRequired("username")
	adminCreateCmd.MarkFlagRequired("email")
	adminCmd.AddCommand(adminCreateCmd)
}

func readPassword(prompt string) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", errors.New("stdin is not a terminal")
	}
	fmt.Fprint(os.Stderr, prompt)
	b, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func runAdminCreate(cmd *cobra.Command, args []string) error {
	if adminRole != "admin" && adminRole != "super_admin" {
		return fmt.Errorf("role must be admin or super_admin, got %q", adminRole)
	}

	cfg, log, err := loadEnv()
	if err != nil {
		return err
	}
	defer log.Sync()

	password, err := readPassword("Password: ")
	if err != nil {
		return fmt.Errorf("failed to read password: %w", err)
	}
	if len(strings.TrimSpace(password)) < 8 {
		return errors.New("password must be at least 8 characters")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	db, err := database.Connect(cfg)
	if err != nil {
		return err
	}
	defer db.Close()
	if err := database.InitDB(cmd.Context(), db); err != nil {
		return err
	}

	id, err := database.NewAdminRepository(db).Create(cmd.Context(), models.AdminAccount{
		Username:     adminUsername,
		Email:        adminEmail,
		PasswordHash: string(hash),
		Role:         adminRole,
	})
	if err != nil {
		return fmt.Errorf("create admin: %w", err)
	}
	fmt.Fprintf(os.Stderr, "Created admin %s (id %d)\n", adminUsername, id)
	return nil
}
