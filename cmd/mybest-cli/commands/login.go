package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"mybest-backend/lib/prefstore"
	"mybest-backend/lib/scrapers/elearning"
	"mybest-backend/lib/serviceutil"
)

var loginNim *string
var loginPassword *string
var loginRemember *bool
var loginAuto *bool

func init() {
	loginNim = loginCmd.Flags().String("nim", "", "Student id, falls back to the config file.")
	loginPassword = loginCmd.Flags().String("password", "", "Password, falls back to the config file.")
	loginRemember = loginCmd.Flags().Bool("remember", true, "Remember the password locally.")
	loginAuto = loginCmd.Flags().Bool("auto", true, "Re-login automatically when the session expires.")
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(sessionCmd)
}

var loginCmd = &cobra.Command{
	Use:   "login [--nim <nim>] [--password <password>]",
	Short: "Logs into the portal and stores the session locally.",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		env := setup(ctx)

		nim := *loginNim
		password := *loginPassword
		if nim == "" {
			nim = env.cfg.Username
		}
		if password == "" {
			password = env.cfg.Password
		}
		if nim == "" || password == "" {
			serviceutil.Fatal("missing credentials",
				errors.New("pass --nim and --password or set them in mybest.json5"))
		}

		err := env.service.Login(ctx, prefstore.Credentials{
			Username:   nim,
			Password:   password,
			RememberMe: *loginRemember,
			AutoLogin:  *loginAuto,
		})
		if errors.Is(err, elearning.ErrCaptchaUnsolvable) {
			serviceutil.Fatal("the login captcha could not be solved, try again", err)
		}
		if errors.Is(err, elearning.ErrCredentialRejected) {
			serviceutil.Fatal("the portal rejected the credentials", err)
		}
		if err != nil {
			serviceutil.Fatal("login failed", err)
		}
		fmt.Println("logged in as", nim)
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Logs out and wipes the stored session.",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		env := setup(ctx)

		err := env.service.Logout(ctx)
		if err != nil {
			serviceutil.Fatal("logout failed", err)
		}
		fmt.Println("logged out")
	},
}

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Checks whether the stored session is still alive.",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		env := setup(ctx)

		ok, err := env.service.CheckSession(ctx)
		if err != nil {
			serviceutil.Fatal("session check failed", err)
		}
		if ok {
			fmt.Println("session is alive")
		} else {
			fmt.Println("session has expired, run `mybest-cli login`")
		}
	},
}
