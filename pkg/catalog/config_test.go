package catalog

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/matzehuels/pommapper/pkg/errors"
)

const sampleConfig = `
[server]
addr = ":9090"
query_timeout = "500ms"

[index]
workers = 2
warm = false
max_age = "15m"

[cache]
backend = "none"

[[repositories]]
name = "releases"
path = "/srv/maven/releases"
watch = true

[[repositories]]
name = "central"
url = "https://repo1.maven.org/maven2"
attempts = 5

[repositories.headers]
Authorization = "Bearer token"

[[artifacts]]
id = "BetonQuest"
repository = "releases"
group_id = "org.betonquest"
artifact_id = "betonquest"
group_depth = 2

[artifacts.fields]
spigot = "/project/properties/spigot.version"
`

func TestParseConfig(t *testing.T) {
	cfg, err := ParseConfig([]byte(sampleConfig))
	if err != nil {
		t.Fatalf("ParseConfig() error: %v", err)
	}

	if cfg.Server.Addr != ":9090" {
		t.Errorf("Addr = %q", cfg.Server.Addr)
	}
	if cfg.Server.QueryTimeout.Duration != 500*time.Millisecond {
		t.Errorf("QueryTimeout = %v", cfg.Server.QueryTimeout)
	}
	if cfg.Server.BasePath != DefaultBasePath {
		t.Errorf("BasePath = %q, want default", cfg.Server.BasePath)
	}
	if cfg.Server.ShutdownTimeout.Duration != DefaultShutdownTimeout {
		t.Errorf("ShutdownTimeout = %v, want default", cfg.Server.ShutdownTimeout)
	}
	if cfg.Index.Workers != 2 || cfg.Index.WarmOnStart() || cfg.Index.MaxAge.Duration != 15*time.Minute {
		t.Errorf("Index = %+v", cfg.Index)
	}
	if cfg.Cache.Backend != BackendNone || cfg.Cache.TTL.Duration != DefaultCacheTTL {
		t.Errorf("Cache = %+v", cfg.Cache)
	}
	if cfg.Notify.Channel != DefaultNotifyChannel {
		t.Errorf("Notify.Channel = %q", cfg.Notify.Channel)
	}
	if len(cfg.Repositories) != 2 || !cfg.Repositories[0].Watch {
		t.Fatalf("Repositories = %+v", cfg.Repositories)
	}
	if cfg.Repositories[1].Headers["Authorization"] != "Bearer token" {
		t.Errorf("Repositories[1].Headers = %v", cfg.Repositories[1].Headers)
	}
	if cfg.Repositories[1].Attempts != 5 {
		t.Errorf("Repositories[1].Attempts = %d, want 5", cfg.Repositories[1].Attempts)
	}
	if len(cfg.Artifacts) != 1 {
		t.Fatalf("Artifacts = %+v", cfg.Artifacts)
	}
	a := cfg.Artifacts[0]
	if a.ID != "BetonQuest" || a.GroupDepth != 2 || a.Fields["spigot"] != "/project/properties/spigot.version" {
		t.Errorf("Artifact = %+v", a)
	}
}

func TestParseConfigDefaults(t *testing.T) {
	cfg, err := ParseConfig(nil)
	if err != nil {
		t.Fatalf("ParseConfig(nil) error: %v", err)
	}
	if cfg.Server.Addr != DefaultAddr || cfg.Index.Workers != DefaultWorkers || !cfg.Index.WarmOnStart() {
		t.Errorf("defaults not applied: %+v", cfg)
	}
	if cfg.Cache.Backend != BackendFile {
		t.Errorf("Cache.Backend = %q, want %q", cfg.Cache.Backend, BackendFile)
	}
}

func TestParseConfigInvalid(t *testing.T) {
	repo := "[[repositories]]\nname = \"r\"\npath = \"/tmp\"\n"
	art := func(extra string) string {
		return repo + "[[artifacts]]\nid = \"A\"\nrepository = \"r\"\ngroup_id = \"org.a\"\nartifact_id = \"a\"\n" + extra
	}

	tests := map[string]string{
		"bad toml":              "[server",
		"unknown key":           "[server]\nport = 1\n",
		"bad duration":          "[server]\nquery_timeout = \"soon\"\n",
		"repo without source":   "[[repositories]]\nname = \"r\"\n",
		"repo with both":        "[[repositories]]\nname = \"r\"\npath = \"/tmp\"\nurl = \"https://x\"\n",
		"duplicate repo":        repo + repo,
		"remote watch":          "[[repositories]]\nname = \"r\"\nurl = \"https://x\"\nwatch = true\n",
		"bad url":               "[[repositories]]\nname = \"r\"\nurl = \"ftp://x\"\n",
		"unknown repository":    "[[artifacts]]\nid = \"A\"\nrepository = \"nope\"\ngroup_id = \"g\"\nartifact_id = \"a\"\n",
		"duplicate artifact":    art("") + "[[artifacts]]\nid = \"A\"\nrepository = \"r\"\ngroup_id = \"org.b\"\nartifact_id = \"b\"\n",
		"duplicate coordinate":  art("") + "[[artifacts]]\nid = \"B\"\nrepository = \"r\"\ngroup_id = \"org.a\"\nartifact_id = \"a\"\n",
		"negative depth":        art("group_depth = -1\n"),
		"bad rule":              art("[artifacts.fields]\nx = \"/project//v\"\n"),
		"bad backend":           "[cache]\nbackend = \"memcached\"\n",
		"redis without addr":    "[cache]\nbackend = \"redis\"\n",
		"mongo without uri":     "[cache]\nbackend = \"mongo\"\n",
		"empty repository name": "[[repositories]]\npath = \"/tmp\"\n",
		"negative max age":      "[index]\nmax_age = \"-1m\"\n",
		"negative attempts":     "[[repositories]]\nname = \"r\"\nurl = \"https://x\"\nattempts = -1\n",
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ParseConfig([]byte(doc))
			if !errors.Is(err, errors.ErrCodeInvalidConfig) {
				t.Errorf("ParseConfig() error = %v, want INVALID_CONFIG", err)
			}
		})
	}
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pommapper.toml")
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}
	if cfg.Artifacts[0].ID != "BetonQuest" {
		t.Errorf("Artifacts[0].ID = %q", cfg.Artifacts[0].ID)
	}

	_, err = LoadConfig(filepath.Join(dir, "missing.toml"))
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("LoadConfig(missing) error = %v, want FILE_NOT_FOUND", err)
	}
}

func TestDurationText(t *testing.T) {
	var d Duration
	if err := d.UnmarshalText([]byte("1m30s")); err != nil {
		t.Fatalf("UnmarshalText() error: %v", err)
	}
	if d.Duration != 90*time.Second {
		t.Errorf("Duration = %v", d.Duration)
	}
	text, err := d.MarshalText()
	if err != nil || string(text) != "1m30s" {
		t.Errorf("MarshalText() = %q, %v", text, err)
	}
}
