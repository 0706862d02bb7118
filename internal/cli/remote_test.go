package cli

import (
	"strings"
	"testing"

	"github.com/valter-silva-au/sockboard/internal/core"
	"github.com/valter-silva-au/sockboard/pkg/models"
)

// withTestConfig swaps the package-level ConfigMgr and Config for ones backed
// by a temp directory.
func withTestConfig(t *testing.T) *models.GlobalConfig {
	t.Helper()

	mgr := core.NewConfigurationManager(t.TempDir())
	cfg, err := mgr.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	origMgr, origCfg := ConfigMgr, Config
	ConfigMgr = mgr
	Config = cfg
	t.Cleanup(func() {
		ConfigMgr = origMgr
		Config = origCfg
	})
	return cfg
}

func TestRemoteSet_RequiresConnectionFlags(t *testing.T) {
	withTestConfig(t)

	err := remoteSetCmd.RunE(remoteSetCmd, nil)
	if err == nil {
		t.Fatal("expected error when neither --url/--api-key nor --table is given")
	}
	if !strings.Contains(err.Error(), "--url") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestRemoteSet_SavesEndpoint(t *testing.T) {
	cfg := withTestConfig(t)

	if err := remoteSetCmd.Flags().Set("url", "https://proj.supabase.co/"); err != nil {
		t.Fatal(err)
	}
	if err := remoteSetCmd.Flags().Set("api-key", "service-key"); err != nil {
		t.Fatal(err)
	}
	defer func() {
		_ = remoteSetCmd.Flags().Set("url", "")
		_ = remoteSetCmd.Flags().Set("api-key", "")
	}()

	if err := remoteSetCmd.RunE(remoteSetCmd, nil); err != nil {
		t.Fatalf("remote set RunE error = %v", err)
	}

	if cfg.Remote.URL != "https://proj.supabase.co" {
		t.Errorf("URL = %q, want trailing slash trimmed", cfg.Remote.URL)
	}
	if !cfg.Remote.Configured() {
		t.Error("remote should report configured")
	}

	// The saved file round-trips through the configuration manager.
	reloaded, err := ConfigMgr.Load()
	if err != nil {
		t.Fatal(err)
	}
	if reloaded.Remote.URL != cfg.Remote.URL {
		t.Errorf("reloaded URL = %q, want %q", reloaded.Remote.URL, cfg.Remote.URL)
	}
}

func TestRemoteClear_ReturnsToLocalOnly(t *testing.T) {
	cfg := withTestConfig(t)
	cfg.Remote = models.RemoteConfig{URL: "https://proj.supabase.co", APIKey: "k"}
	cfg.LocalTablePath = "/tmp/shared.db"

	if err := remoteClearCmd.RunE(remoteClearCmd, nil); err != nil {
		t.Fatalf("remote clear RunE error = %v", err)
	}

	if cfg.Remote.Configured() {
		t.Error("remote should be cleared")
	}
	if cfg.LocalTablePath != "" {
		t.Error("shared table path should be cleared")
	}
}
