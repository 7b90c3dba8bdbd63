package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"mybest-backend/lib/serviceutil"
)

var profileName *string
var profileEmail *string
var passwdCurrent *string
var passwdNew *string

func init() {
	profileName = profileUpdateCmd.Flags().String("name", "", "New display name.")
	profileEmail = profileUpdateCmd.Flags().String("email", "", "New email address.")
	passwdCurrent = profilePasswdCmd.Flags().String("current", "", "Current password.")
	passwdNew = profilePasswdCmd.Flags().String("new", "", "New password.")

	profileCmd.AddCommand(profileUpdateCmd)
	profileCmd.AddCommand(profilePasswdCmd)
	rootCmd.AddCommand(profileCmd)
}

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Shows and edits the account profile.",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		env := setup(ctx)

		profile, err := env.service.SyncProfile(ctx)
		if err != nil {
			serviceutil.Fatal("failed to load profile", err)
		}
		fmt.Println("name: ", profile.Name)
		fmt.Println("email:", profile.Email)
	},
}

var profileUpdateCmd = &cobra.Command{
	Use:   "update --name <name> --email <email>",
	Short: "Updates the display name and email.",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		env := setup(ctx)

		if *profileName == "" && *profileEmail == "" {
			serviceutil.Fatal("nothing to update",
				errors.New("pass --name and/or --email"))
		}

		// the portal form posts both fields, so fill the gaps from the
		// current profile
		current, err := env.client.Profile(ctx)
		if err != nil {
			serviceutil.Fatal("failed to load current profile", err)
		}
		name := *profileName
		if name == "" {
			name = current.Name
		}
		email := *profileEmail
		if email == "" {
			email = current.Email
		}

		err = env.client.UpdateProfile(ctx, name, email)
		if err != nil {
			serviceutil.Fatal("failed to update profile", err)
		}
		fmt.Println("profile updated")
	},
}

var profilePasswdCmd = &cobra.Command{
	Use:   "passwd --current <password> --new <password>",
	Short: "Changes the account password.",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		env := setup(ctx)

		if *passwdCurrent == "" || *passwdNew == "" {
			serviceutil.Fatal("missing passwords",
				errors.New("pass both --current and --new"))
		}

		err := env.client.ChangePassword(ctx, *passwdCurrent, *passwdNew)
		if err != nil {
			serviceutil.Fatal("failed to change password", err)
		}
		fmt.Println("password changed, log in again with the new password")
	},
}
