package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Store an access token",
	Long: `Stores the bearer token used for every backend request.

The token is read from --token, or prompted for without echo.`,
	Args: cobra.NoArgs,
	RunE: runLogin,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored access token",
	Args:  cobra.NoArgs,
	RunE:  runLogout,
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the current session",
	Args:  cobra.NoArgs,
	RunE:  runWhoami,
}

var (
	loginToken string
	loginEmail string
)

func init() {
	loginCmd.Flags().StringVar(&loginToken, "token", "", "Access token")
	loginCmd.Flags().StringVar(&loginEmail, "email", "", "Account email")

	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(whoamiCmd)
}

func runLogin(cmd *cobra.Command, _ []string) error {
	if sessionService == nil {
		return errors.New("session service not configured")
	}

	token := strings.TrimSpace(loginToken)
	if token == "" {
		cmd.Print("Access token: ")
		token = readSecret(cmd.InOrStdin())
		cmd.Println()
	}
	if token == "" {
		return errors.New("no token given")
	}

	if err := sessionService.Login(cmd.Context(), token, loginEmail); err != nil {
		return fmt.Errorf("failed to log in: %w", err)
	}

	cmd.Println(success("Logged in."))
	return nil
}

// readSecret reads a line without echo when in is the terminal.
func readSecret(in io.Reader) string {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		secret, err := term.ReadPassword(int(f.Fd()))
		if err != nil {
			return ""
		}
		return strings.TrimSpace(string(secret))
	}
	line, _ := bufio.NewReader(in).ReadString('\n')
	return strings.TrimSpace(line)
}

func runLogout(cmd *cobra.Command, _ []string) error {
	if sessionService == nil {
		return errors.New("session service not configured")
	}

	if err := sessionService.Logout(cmd.Context()); err != nil {
		return fmt.Errorf("failed to log out: %w", err)
	}

	cmd.Println("Logged out.")
	return nil
}

func runWhoami(cmd *cobra.Command, _ []string) error {
	if sessionService == nil {
		return errors.New("session service not configured")
	}

	session, err := sessionService.Current(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to read session: %w", err)
	}

	status := failure("logged out")
	if session.IsAuthenticated() {
		status = success("logged in")
	}
	cmd.Printf("Status:       %s\n", status)
	cmd.Printf("Email:        %s\n", orNone(session.Email))
	cmd.Printf("Organization: %s\n", orNone(session.Organization))
	return nil
}

func orNone(s string) string {
	if s == "" {
		return muted("(none)")
	}
	return s
}
