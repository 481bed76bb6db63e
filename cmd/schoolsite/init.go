// ABOUTME: Interactive config setup and credential helpers for schoolsite
// ABOUTME: Writes a YAML config with a generated signing secret and bcrypt password hash

package main

import (
	"bufio"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"

	"github.com/2389/schoolsite/internal/auth"
	"github.com/2389/schoolsite/internal/config"
)

func runInit() error {
	reader := bufio.NewReader(os.Stdin)

	fmt.Println("schoolsite configuration setup")
	fmt.Println("==============================")
	fmt.Println()

	defaults := config.Default()

	outputFile := prompt(reader, "Config file path", config.ResolvePath())

	if _, err := os.Stat(outputFile); err == nil {
		if !yes(prompt(reader, "File exists. Overwrite?", "no")) {
			fmt.Println("Aborted.")
			return nil
		}
	}

	fmt.Println("\n--- Backend Configuration ---")
	httpAddr := prompt(reader, "HTTP address", defaults.Server.HTTPAddr)
	dbPath := prompt(reader, "Backend database path", defaults.Server.DatabasePath)
	uploadsDir := prompt(reader, "Uploads directory", defaults.Uploads.Dir)
	publicURL := prompt(reader, "Public uploads URL (leave empty to derive from requests)", "")

	fmt.Println("\n--- Admin Credentials ---")
	username := prompt(reader, "Admin username (leave empty to disable login)", "")
	var passwordHash, jwtSecret string
	if username != "" {
		password := prompt(reader, "Admin password", "")
		if password == "" {
			return fmt.Errorf("a password is required when a username is set")
		}
		hash, err := auth.HashPassword(password)
		if err != nil {
			return fmt.Errorf("hashing password: %w", err)
		}
		passwordHash = hash

		secret, err := generateSecret()
		if err != nil {
			return err
		}
		jwtSecret = secret
	}
	adminToken := prompt(reader, "Static admin token (leave empty for none)", "")

	fmt.Println("\n--- Editor Configuration ---")
	localPath := prompt(reader, "Local store path", defaults.Local.Path)
	baseURL := prompt(reader, "Remote backend URL (leave empty to work offline)", "http://"+httpAddr)

	fmt.Println("\n--- Logging Configuration ---")
	logLevel := prompt(reader, "Log level (debug/info/warn/error)", defaults.Logging.Level)
	logFormat := prompt(reader, "Log format (text/json)", defaults.Logging.Format)

	var cfg strings.Builder
	cfg.WriteString("# schoolsite configuration\n")
	cfg.WriteString("# Generated by schoolsite init\n\n")

	cfg.WriteString("server:\n")
	cfg.WriteString(fmt.Sprintf("  http_addr: %q\n", httpAddr))
	cfg.WriteString(fmt.Sprintf("  database_path: %q\n", dbPath))
	cfg.WriteString("\n")

	cfg.WriteString("local:\n")
	cfg.WriteString(fmt.Sprintf("  path: %q\n", localPath))
	cfg.WriteString(fmt.Sprintf("  slot_key: %q\n", defaults.Local.SlotKey))
	cfg.WriteString(fmt.Sprintf("  max_bytes: %d\n", defaults.Local.MaxBytes))
	cfg.WriteString("\n")

	cfg.WriteString("remote:\n")
	cfg.WriteString(fmt.Sprintf("  base_url: %q\n", baseURL))
	if adminToken != "" {
		cfg.WriteString("  token: \"${SCHOOLSITE_ADMIN_TOKEN}\"\n")
	}
	cfg.WriteString("  timeout: \"15s\"\n")
	cfg.WriteString("\n")

	cfg.WriteString("admin:\n")
	if username != "" {
		cfg.WriteString(fmt.Sprintf("  username: %q\n", username))
		cfg.WriteString(fmt.Sprintf("  password_hash: %q\n", passwordHash))
		cfg.WriteString(fmt.Sprintf("  jwt_secret: %q\n", jwtSecret))
		cfg.WriteString("  token_ttl: \"12h\"\n")
	}
	if adminToken != "" {
		cfg.WriteString("  token: \"${SCHOOLSITE_ADMIN_TOKEN}\"\n")
	}
	cfg.WriteString("\n")

	cfg.WriteString("uploads:\n")
	cfg.WriteString(fmt.Sprintf("  dir: %q\n", uploadsDir))
	if publicURL != "" {
		cfg.WriteString(fmt.Sprintf("  public_url: %q\n", publicURL))
	}
	cfg.WriteString("\n")

	cfg.WriteString("logging:\n")
	cfg.WriteString(fmt.Sprintf("  level: %q\n", logLevel))
	cfg.WriteString(fmt.Sprintf("  format: %q\n", logFormat))

	if err := os.MkdirAll(filepath.Dir(outputFile), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	// The file carries a password hash and signing secret.
	if err := os.WriteFile(outputFile, []byte(cfg.String()), 0600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	fmt.Printf("\nConfig written to %s\n", outputFile)
	if adminToken != "" {
		yellow := color.New(color.FgYellow)
		yellow.Println("\nExport the admin token before starting:")
		fmt.Printf("  export SCHOOLSITE_ADMIN_TOKEN=%s\n", adminToken)
	}
	fmt.Println("\nTo start the backend:")
	fmt.Println("  schoolsite serve")

	return nil
}

func runHashPassword() error {
	fmt.Fprint(os.Stderr, "Password: ")
	password, err := readPassword(os.Stdin)
	if err != nil {
		return err
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}
	fmt.Println(hash)
	return nil
}

// readPassword reads the first line of r without its line ending.
func readPassword(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("reading password: %w", err)
	}
	password := strings.TrimRight(line, "\r\n")
	if password == "" {
		return "", fmt.Errorf("empty password")
	}
	return password, nil
}

func generateSecret() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generating secret: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

func prompt(reader *bufio.Reader, question, defaultVal string) string {
	if defaultVal != "" {
		fmt.Printf("%s [%s]: ", question, defaultVal)
	} else {
		fmt.Printf("%s: ", question)
	}

	input, err := reader.ReadString('\n')
	if err != nil {
		// On EOF or error, return default
		fmt.Println()
		return defaultVal
	}
	input = strings.TrimSpace(input)

	if input == "" {
		return defaultVal
	}
	return input
}

func yes(answer string) bool {
	answer = strings.ToLower(answer)
	return answer == "yes" || answer == "y"
}
