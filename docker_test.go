package aispecialist_test

import (
	"os"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"
)

// composeFile はdocker-compose.ymlのうちテストで確認する部分。
type composeFile struct {
	Services map[string]struct {
		Image    string   `yaml:"image"`
		Command  []string `yaml:"command"`
		Networks []string `yaml:"networks"`
	} `yaml:"services"`
	Networks map[string]*struct {
		Internal bool `yaml:"internal"`
	} `yaml:"networks"`
}

func readCompose(t *testing.T) composeFile {
	t.Helper()
	data, err := os.ReadFile("docker-compose.yml")
	if err != nil {
		t.Fatalf("failed to read docker-compose.yml: %v", err)
	}
	var c composeFile
	if err := yaml.Unmarshal(data, &c); err != nil {
		t.Fatalf("failed to parse docker-compose.yml: %v", err)
	}
	return c
}

func TestDockerfileExists(t *testing.T) {
	_, err := os.Stat("Dockerfile")
	if err != nil {
		t.Fatalf("Dockerfile should exist: %v", err)
	}
}

func TestDockerfileMultiStageBuild(t *testing.T) {
	data, err := os.ReadFile("Dockerfile")
	if err != nil {
		t.Fatalf("failed to read Dockerfile: %v", err)
	}
	content := string(data)

	// マルチステージビルドの確認: ビルドステージと実行ステージが存在すること
	if !strings.Contains(content, "FROM golang:") {
		t.Error("Dockerfile should contain a Go builder stage (FROM golang:)")
	}

	// 最終ステージは軽量イメージであること
	lines := strings.Split(content, "\n")
	var lastFrom string
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "FROM ") {
			lastFrom = trimmed
		}
	}
	if !strings.Contains(lastFrom, "gcr.io/distroless") && !strings.Contains(lastFrom, "alpine") && !strings.Contains(lastFrom, "scratch") {
		t.Errorf("final stage should use a minimal base image (distroless/alpine/scratch), got: %s", lastFrom)
	}
}

func TestDockerfileBinaryAndContent(t *testing.T) {
	data, err := os.ReadFile("Dockerfile")
	if err != nil {
		t.Fatalf("failed to read Dockerfile: %v", err)
	}
	content := string(data)

	// バイナリ名がaispecialistであること
	if !strings.Contains(content, "./cmd/aispecialist") {
		t.Error("Dockerfile should build ./cmd/aispecialist")
	}
	if !strings.Contains(content, "ENTRYPOINT") {
		t.Error("Dockerfile should contain ENTRYPOINT")
	}
	// 記事ファイルはイメージに同梱する
	if !strings.Contains(content, "COPY content") || !strings.Contains(content, "CONTENT_DIR=") {
		t.Error("Dockerfile should ship the content directory and set CONTENT_DIR")
	}
	// distrolessにはシェルがないため、healthcheckサブコマンドで確認する
	if !strings.Contains(content, `"healthcheck"`) {
		t.Error("Dockerfile should use the healthcheck subcommand")
	}
}

func TestDockerComposeServices(t *testing.T) {
	c := readCompose(t)

	// 3コンテナ構成: api, migrate, db
	for _, name := range []string{"api", "migrate", "db"} {
		if _, ok := c.Services[name]; !ok {
			t.Errorf("docker-compose.yml should contain service %q", name)
		}
	}

	if got := c.Services["migrate"].Command; len(got) == 0 || got[0] != "migrate" {
		t.Errorf("migrate service command = %v, want [migrate]", got)
	}
	if !strings.HasPrefix(c.Services["db"].Image, "postgres:") {
		t.Errorf("db image = %q, want postgres", c.Services["db"].Image)
	}
}

// TestDockerComposeNetworks はDBが内部ネットワークのみに接続されることを検証する。
func TestDockerComposeNetworks(t *testing.T) {
	c := readCompose(t)

	internal, ok := c.Networks["internal"]
	if !ok || internal == nil || !internal.Internal {
		t.Fatal("docker-compose.yml should define an internal network (internal: true)")
	}
	if _, ok := c.Networks["external"]; !ok {
		t.Error("docker-compose.yml should define an external network for api egress")
	}

	if nets := c.Services["db"].Networks; len(nets) != 1 || nets[0] != "internal" {
		t.Errorf("db networks = %v, want [internal]", nets)
	}

	apiNets := strings.Join(c.Services["api"].Networks, ",")
	if !strings.Contains(apiNets, "external") {
		t.Errorf("api networks = %v, want external for email delivery", c.Services["api"].Networks)
	}
}

// TestSampleContentExists は同梱する記事ファイルが存在することを検証する。
func TestSampleContentExists(t *testing.T) {
	entries, err := os.ReadDir("content/interview")
	if err != nil {
		t.Fatalf("content/interview should exist: %v", err)
	}
	count := 0
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".mdx") {
			count++
		}
	}
	if count == 0 {
		t.Error("content/interview should contain at least one .mdx article")
	}
}
