package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kiracore/tracker/internal/config"
	"github.com/kiracore/tracker/internal/model"
	"github.com/kiracore/tracker/internal/paths"
	"github.com/kiracore/tracker/internal/store"
	"github.com/kiracore/tracker/internal/ui"
)

var (
	seedFile string
	idStyle  string
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a tracker workspace",
	Long: `Create a .tracker.yaml configuration file and an initialized database.

With --seed, users, projects, labels and workspaces are loaded from a YAML
file. Without it a starter label set is created.

Seed file example:
  workspaces:
    - name: Acme
      slug: acme
  users:
    - name: Alice
      email: alice@example.com
      role: admin
  projects:
    - key: ENG
      name: Engine
      lead: alice@example.com
      members: [alice@example.com]
  labels:
    - name: backend
      color: "#10b981"`,
	RunE: runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().StringVar(&seedFile, "seed", "", "seed file with users, projects, labels and workspaces")
	initCmd.Flags().StringVar(&idStyle, "id-style", "random", "identity style (random|sequence)")
}

func runInit(cmd *cobra.Command, args []string) error {
	configFile := paths.ConfigFileName

	seed := config.DefaultSeed()
	if seedFile != "" {
		var err error
		seed, err = config.LoadSeedFromFile(seedFile)
		if err != nil {
			return fmt.Errorf("failed to load seed: %w", err)
		}
	}

	result := seed.Validate()
	printValidation(result)
	if !result.IsValid() {
		return fmt.Errorf("seed file has %d error(s)", len(result.Errors))
	}

	currentProject := ""
	if len(seed.Projects) > 0 {
		currentProject = seed.Projects[0].Key
	}

	if _, err := os.Stat(configFile); err == nil {
		fmt.Println(ui.Warning("%s already exists, leaving it unchanged", configFile))
	} else {
		if err := os.WriteFile(configFile, []byte(generateConfig(currentProject, idStyle)), 0644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
		fmt.Println(ui.Success("Created %s", configFile))
		// pick up id_style and current_project from the new file
		initConfig()
	}

	return withWorkspace(func(w *workspace) error {
		if len(w.store.Snapshot().Projects) > 0 && seedFile == "" {
			fmt.Println(ui.Success("Workspace already initialized at %s", w.db.Path()))
			return nil
		}

		applySeed(w.store, seed)
		snap := w.store.Snapshot()

		fmt.Println(ui.Success("Database ready at %s", w.db.Path()))
		fmt.Printf("  Workspaces: %d\n", len(snap.Workspaces))
		fmt.Printf("  Users:      %d\n", len(snap.Users))
		fmt.Printf("  Projects:   %d\n", len(snap.Projects))
		fmt.Printf("  Labels:     %d\n", len(snap.Labels))

		fmt.Println("\nNext steps:")
		if len(snap.Projects) == 0 {
			fmt.Println("  1. Run: tracker project create --key ENG --name \"My Project\"")
		} else {
			fmt.Printf("  1. Current project is %s\n", snap.Projects[0].Key)
		}
		fmt.Println("  2. Run: tracker issue create \"First issue\"")
		fmt.Println("  3. Run: tracker board")
		return nil
	})
}

// applySeed adds the seeded entities in dependency order: users first so
// projects can refer to them by email.
func applySeed(s *store.Store, seed *config.Seed) {
	for _, ws := range seed.Workspaces {
		s.AddWorkspace(store.WorkspaceDraft{Name: ws.Name, Slug: ws.Slug, Logo: ws.Logo})
	}

	byEmail := make(map[string]model.User, len(seed.Users))
	for _, u := range seed.Users {
		role := u.Role
		if role == "" {
			role = model.RoleDeveloper
		}
		added := s.AddUser(store.UserDraft{Name: u.Name, Email: u.Email, Avatar: u.Avatar, Role: role})
		byEmail[u.Email] = added
	}

	for i, p := range seed.Projects {
		members := []model.User{}
		for _, email := range p.Members {
			if u, ok := byEmail[email]; ok {
				members = append(members, u)
			}
		}
		added := s.AddProject(store.ProjectDraft{
			Key:         p.Key,
			Name:        p.Name,
			Description: p.Description,
			Lead:        byEmail[p.Lead],
			Members:     members,
		})
		if i == 0 {
			s.SetCurrentProject(added)
		}
	}

	for _, l := range seed.Labels {
		s.AddLabel(store.LabelDraft{Name: l.Name, Color: l.Color})
	}

	if len(seed.Users) > 0 {
		s.SetCurrentUser(byEmail[seed.Users[0].Email])
	}
}

func generateConfig(currentProject, idStyle string) string {
	return fmt.Sprintf(`# Tracker configuration
version: "1"

# database: /path/to/tracker.db
current_project: "%s"
current_user: ""

settings:
  id_style: %s
  log_level: info
  board_limit: 10
  wip_limits:
    inprogress: 5
    inreview: 3
`, currentProject, idStyle)
}
