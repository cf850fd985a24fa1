package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kiracore/tracker/internal/config"
	"github.com/kiracore/tracker/internal/model"
	"github.com/kiracore/tracker/internal/store"
	"github.com/kiracore/tracker/internal/ui"
)

var (
	userName   string
	userEmail  string
	userAvatar string
	userRole   string
)

var userCmd = &cobra.Command{
	Use:     "user",
	Aliases: []string{"users"},
	Short:   "Manage workspace members",
}

var userAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a user",
	RunE:  runUserAdd,
}

var userListCmd = &cobra.Command{
	Use:   "list",
	Short: "List users",
	RunE:  runUserList,
}

var userUseCmd = &cobra.Command{
	Use:   "use <user>",
	Short: "Act as a user (id, email or name)",
	Args:  cobra.ExactArgs(1),
	RunE:  runUserUse,
}

func init() {
	rootCmd.AddCommand(userCmd)
	userCmd.AddCommand(userAddCmd)
	userCmd.AddCommand(userListCmd)
	userCmd.AddCommand(userUseCmd)

	userAddCmd.Flags().StringVarP(&userName, "name", "n", "", "display name")
	userAddCmd.Flags().StringVarP(&userEmail, "email", "e", "", "email address")
	userAddCmd.Flags().StringVar(&userAvatar, "avatar", "", "avatar URL")
	userAddCmd.Flags().StringVarP(&userRole, "role", "r", string(model.RoleDeveloper), "role (admin|developer|designer|viewer)")
	userAddCmd.MarkFlagRequired("name")
	userAddCmd.MarkFlagRequired("email")
}

func runUserAdd(cmd *cobra.Command, args []string) error {
	role := model.Role(userRole)
	if !role.Valid() {
		return fmt.Errorf("unknown role %q", userRole)
	}
	if err := config.ValidateEmail(userEmail); err != nil {
		return err
	}

	return withWorkspace(func(w *workspace) error {
		if _, ok := findUser(w.store.Snapshot().Users, userEmail); ok {
			return fmt.Errorf("user with email %q already exists", userEmail)
		}

		u := w.store.AddUser(store.UserDraft{Name: userName, Email: userEmail, Avatar: userAvatar, Role: role})
		if w.store.Snapshot().CurrentUser == nil {
			w.store.SetCurrentUser(u)
		}

		if jsonOutput() {
			return printJSON(u)
		}
		fmt.Println(ui.Success("Added %s <%s> as %s", u.Name, u.Email, u.Role))
		return nil
	})
}

func runUserList(cmd *cobra.Command, args []string) error {
	return withWorkspace(func(w *workspace) error {
		snap := w.store.Snapshot()
		if jsonOutput() {
			return printJSON(snap.Users)
		}

		if len(snap.Users) == 0 {
			fmt.Println(ui.RenderMuted("No users."))
			return nil
		}

		for _, u := range snap.Users {
			marker := " "
			if snap.CurrentUser != nil && snap.CurrentUser.ID == u.ID {
				marker = ui.RenderAccent("*")
			}
			fmt.Printf("%s %-20s %-30s %-10s %s\n", marker, u.Name, u.Email, u.Role, ui.RenderMuted(u.ID))
		}
		return nil
	})
}

func runUserUse(cmd *cobra.Command, args []string) error {
	return withWorkspace(func(w *workspace) error {
		u, err := w.resolveUser(args[0])
		if err != nil {
			return err
		}
		w.store.SetCurrentUser(u)
		fmt.Println(ui.Success("Acting as %s <%s>", u.Name, u.Email))
		return nil
	})
}
