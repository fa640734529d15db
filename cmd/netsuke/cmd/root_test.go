package cmd

import "testing"

func TestRootCmdFlagsRegistered(t *testing.T) {
	for _, name := range []string{"manifest", "workdir", "jobs", "verbose", "locale", "accessible", "rich", "no-emoji", "allow-scheme", "allow-host", "block-host", "deny-all-hosts", "emit"} {
		if rootCmd.PersistentFlags().Lookup(name) == nil {
			t.Errorf("--%s flag not found", name)
		}
	}
}

func TestSubcommandsRegistered(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"build", "clean", "graph", "manifest"} {
		if !names[want] {
			t.Errorf("subcommand %q not registered", want)
		}
	}
}

func TestCleanRequiresConfirmationByDefault(t *testing.T) {
	flag := cleanCmd.Flags().Lookup("yes")
	if flag == nil {
		t.Fatal("--yes flag not found on clean")
	}
	if flag.DefValue != "false" {
		t.Errorf("clean --yes should default to false, got %q", flag.DefValue)
	}
}
