package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"chainchat/config"
)

func getAppDir() (string, string) {
	app := strings.TrimLeft(os.Args[0], "./")
	dir, err := filepath.Abs(filepath.Dir(os.Args[0]))
	if err != nil {
		log.Panic(err)
	}
	return app, dir
}

func getConfigPath(command *cobra.Command) string {
	configPath, _ := command.Flags().GetString("config")

	if configPath == "" {
		configPath = "config.json"
	}

	return configPath
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	configsPath := getConfigPath(cmd)

	file, err := os.Open(configsPath)
	if err != nil {
		return nil, fmt.Errorf("Unable to open configs file at %q: %w", configsPath, err)
	}
	defer file.Close()

	var cfg *config.Config
	err = json.NewDecoder(file).Decode(&cfg)
	if err != nil {
		return nil, fmt.Errorf("Unable to decode configs configuration: %w", err)
	}

	return cfg, nil
}
