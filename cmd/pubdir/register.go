package main

import (
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(registerCmd)
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create a faculty account",
	Long: `Create a faculty account with a generated faculty id and password.

The password is printed once and cannot be recovered afterwards.`,
	Args: cobra.NoArgs,
	RunE: runRegister,
}

// RegisterResult is the response for the register command.
type RegisterResult struct {
	FacultyID string `json:"facultyId"`
	Password  string `json:"password"`
}

func runRegister(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd, 0)
	defer cancel()

	a := mustOpenApp(ctx)
	defer a.Close()

	_, creds, err := a.svc.Register(ctx)
	if err != nil {
		exitWithServiceError(err)
	}
	output(RegisterResult(creds), func() {
		outputHuman("Registered faculty %s\n", creds.FacultyID)
		outputHuman("Password: %s\n", creds.Password)
	})
	return nil
}
