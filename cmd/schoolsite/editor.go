// ABOUTME: Editor-side subcommands working on the local slot and the remote backend
// ABOUTME: Implements show, pull, set, reset, upload, preview, and health

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"gopkg.in/yaml.v3"

	"github.com/2389/schoolsite/internal/admin"
	"github.com/2389/schoolsite/internal/broadcast"
	"github.com/2389/schoolsite/internal/config"
	"github.com/2389/schoolsite/internal/content"
	"github.com/2389/schoolsite/internal/preview"
	"github.com/2389/schoolsite/internal/remote"
	"github.com/2389/schoolsite/internal/sitedata"
	"github.com/2389/schoolsite/internal/store"
	"github.com/2389/schoolsite/internal/upload"
)

// editor bundles the editor-side components built from config.
type editor struct {
	cfg     *config.Config
	logger  *slog.Logger
	slot    *store.SQLiteStore
	bus     *broadcast.Broadcaster
	local   *sitedata.Store
	syncer  *remote.Syncer
	uploads *upload.Client
}

func openEditor() (*editor, error) {
	cfg, _, err := loadConfig()
	if err != nil {
		return nil, err
	}
	logger := setupLogger(cfg.Logging)

	var opts []store.Option
	if cfg.Local.MaxBytes > 0 {
		opts = append(opts, store.WithMaxValueBytes(int(cfg.Local.MaxBytes)))
	}
	slot, err := store.NewSQLiteStore(cfg.Local.Path, opts...)
	if err != nil {
		return nil, fmt.Errorf("opening local store: %w", err)
	}

	bus := broadcast.Default()
	local := sitedata.New(sitedata.Config{
		Slot:   slot,
		Key:    cfg.Local.SlotKey,
		Bus:    bus,
		Logger: logger,
	})

	httpClient := &http.Client{Timeout: cfg.Remote.Timeout}

	// Leave the interface nil when offline so the syncer skips the network.
	var client remote.DocumentClient
	if cfg.Remote.BaseURL != "" {
		client = remote.NewClient(remote.ClientConfig{
			BaseURL:    cfg.Remote.BaseURL,
			DataPath:   cfg.Remote.DataPath,
			Token:      cfg.Remote.Token,
			HTTPClient: httpClient,
			Logger:     logger,
		})
	}

	return &editor{
		cfg:    cfg,
		logger: logger,
		slot:   slot,
		bus:    bus,
		local:  local,
		syncer: remote.NewSyncer(local, client, logger),
		uploads: upload.NewClient(upload.Config{
			Endpoint:   cfg.Remote.UploadURL(),
			Token:      cfg.Remote.Token,
			HTTPClient: httpClient,
			Logger:     logger,
		}),
	}, nil
}

func (e *editor) Close() error {
	return e.slot.Close()
}

func runShow(ctx context.Context) error {
	e, err := openEditor()
	if err != nil {
		return err
	}
	defer e.Close()

	out, err := json.MarshalIndent(e.local.Load(ctx), "", "  ")
	if err != nil {
		return fmt.Errorf("encoding document: %w", err)
	}
	fmt.Println(string(out))
	return nil
}

func runPull(ctx context.Context) error {
	e, err := openEditor()
	if err != nil {
		return err
	}
	defer e.Close()

	if e.cfg.Remote.BaseURL == "" {
		return fmt.Errorf("remote.base_url is not configured")
	}

	var updated bool
	e.bus.Subscribe(func(content.Document) { updated = true })

	doc := e.syncer.PullOnStart(ctx)
	if updated {
		color.New(color.FgGreen).Print("✓ ")
		fmt.Printf("Pulled %q from %s\n", doc.SchoolName, e.cfg.Remote.BaseURL)
	} else {
		color.New(color.FgYellow).Print("! ")
		fmt.Printf("No remote copy available, keeping local %q\n", doc.SchoolName)
	}
	return nil
}

func runSet(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: schoolsite set FILE")
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("reading %s: %w", args[0], err)
	}
	p, err := decodePartial(args[0], data)
	if err != nil {
		return err
	}

	e, err := openEditor()
	if err != nil {
		return err
	}
	defer e.Close()

	result, err := e.syncer.Save(ctx, p)
	if err != nil {
		return err
	}
	printSaveResult(result, p.Keys())
	return nil
}

// decodePartial parses a JSON or YAML patch. Unknown fields are rejected.
func decodePartial(name string, data []byte) (content.Partial, error) {
	ext := strings.ToLower(filepath.Ext(name))
	if ext == ".yaml" || ext == ".yml" {
		var tree any
		if err := yaml.Unmarshal(data, &tree); err != nil {
			return content.Partial{}, fmt.Errorf("parsing YAML: %w", err)
		}
		converted, err := json.Marshal(tree)
		if err != nil {
			return content.Partial{}, fmt.Errorf("converting YAML: %w", err)
		}
		data = converted
	}

	dec := json.NewDecoder(strings.NewReader(string(data)))
	dec.DisallowUnknownFields()
	var p content.Partial
	if err := dec.Decode(&p); err != nil {
		return content.Partial{}, fmt.Errorf("parsing patch: %w", err)
	}
	if p.IsEmpty() {
		return content.Partial{}, fmt.Errorf("patch sets no fields")
	}
	return p, nil
}

func printSaveResult(result remote.SaveResult, keys []string) {
	switch result.Tier {
	case remote.TierRemote:
		color.New(color.FgGreen).Print("✓ ")
	default:
		color.New(color.FgYellow).Print("✓ ")
	}
	fmt.Printf("%s: %s\n", result.Tier, strings.Join(keys, ", "))

	if result.RemoteErr != nil {
		gray := color.New(color.FgHiBlack)
		if remote.IsUnauthorized(result.RemoteErr) {
			gray.Println("  remote rejected the admin token")
		} else {
			gray.Printf("  remote: %v\n", result.RemoteErr)
		}
	}
}

func runReset(ctx context.Context) error {
	e, err := openEditor()
	if err != nil {
		return err
	}
	defer e.Close()

	if err := e.local.Reset(ctx); err != nil {
		return err
	}
	color.New(color.FgGreen).Print("✓ ")
	fmt.Println("Local site data reset to defaults")
	return nil
}

func runUpload(ctx context.Context, args []string) error {
	if len(args) < 1 || len(args) > 2 {
		return fmt.Errorf("usage: schoolsite upload FILE [school|hero|team:N]")
	}

	e, err := openEditor()
	if err != nil {
		return err
	}
	defer e.Close()

	if len(args) == 1 {
		url, err := e.uploads.UploadFile(ctx, args[0])
		if err != nil {
			return err
		}
		fmt.Println(url)
		return nil
	}

	target, err := parseTarget(args[1])
	if err != nil {
		return err
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("reading %s: %w", args[0], err)
	}

	sess := admin.NewSession(e.local.Load(ctx), e.syncer, e.uploads, e.logger)
	url, err := sess.AttachImage(ctx, target, data, upload.DetectType(args[0], data))
	if err != nil {
		return err
	}
	keys := sess.Draft().Keys()
	result, err := sess.Save(ctx)
	if err != nil {
		return err
	}

	printSaveResult(result, keys)
	fmt.Println(abbreviate(url))
	return nil
}

// parseTarget reads "school", "hero" or "team:N".
func parseTarget(s string) (admin.ImageTarget, error) {
	switch {
	case s == "school":
		return admin.SchoolImage(), nil
	case s == "hero":
		return admin.HeroImage(), nil
	case strings.HasPrefix(s, "team:"):
		i, err := strconv.Atoi(strings.TrimPrefix(s, "team:"))
		if err != nil || i < 0 {
			return admin.ImageTarget{}, fmt.Errorf("invalid team index in %q", s)
		}
		return admin.TeamMemberImage(i), nil
	}
	return admin.ImageTarget{}, fmt.Errorf("unknown target %q (want school, hero or team:N)", s)
}

// abbreviate shortens inline data URLs for display.
func abbreviate(url string) string {
	if content.IsInlineImage(url) && len(url) > 64 {
		return url[:48] + "…" + fmt.Sprintf(" (%d chars, stored inline)", len(url))
	}
	return url
}

func runPreview(ctx context.Context) error {
	e, err := openEditor()
	if err != nil {
		return err
	}
	defer e.Close()

	r := preview.NewRenderer(e.logger)
	r.Update(e.local.Load(ctx))
	r.Attach(ctx, e.bus)

	if e.cfg.Remote.BaseURL != "" {
		e.syncer.PullOnStart(ctx)
	}

	fmt.Println(r.HTML())
	return nil
}

func runHealth(ctx context.Context) error {
	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}

	base := strings.TrimRight(cfg.Remote.BaseURL, "/")
	if base == "" {
		base = "http://" + cfg.Server.HTTPAddr
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base+"/health", nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unhealthy: status %d", resp.StatusCode)
	}

	fmt.Println("healthy")
	return nil
}
