package cmd

import (
	"fmt"
	"io/ioutil"
	"os"
	"os/exec"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"chainchat/config"
	"chainchat/core"
)

var daemon bool
var startCmd = &cobra.Command{
	Use:          "start",
	Short:        "Start the server",
	RunE:         startCmdF,
	SilenceUsage: true,
}

func init() {
	RootCmd.AddCommand(startCmd)
	startCmd.Flags().BoolVarP(&daemon, "daemon", "d", false, "run with daemon?")
	RootCmd.RunE = startCmdF
}

func startCmdF(cmd *cobra.Command, args []string) error {
	if daemon {
		runDaemon()
	}

	interruptChan := make(chan os.Signal, 1)
	cfg, err := loadConfig(cmd)
	if err != nil {
		log.Errorf("Error loading configuration: %v", err.Error())
		return err
	}

	return runServer(cfg, interruptChan)
}

// runDaemon 后台启动
func runDaemon() {
	app, dir := getAppDir()

	bin := fmt.Sprintf("%s/%s", dir, app)
	command := exec.Command(bin, "start")
	command.Start()

	log.Infof("Server start, [PID] %d running...", command.Process.Pid)
	ioutil.WriteFile("cc.lock", []byte(fmt.Sprintf("%d", command.Process.Pid)), 0666)
	daemon = false
	os.Exit(0)
}

func runServer(cfg *config.Config, interruptChan chan os.Signal) error {
	log.SetFormatter(&log.TextFormatter{})
	log.SetOutput(os.Stdout)
	log.SetLevel(log.InfoLevel)

	server := core.NewServer(cfg)
	defer server.Close()

	server.Start()

	// wait for kill signal before attempting to gracefully shutdown
	// the running service
	signal.Notify(interruptChan, syscall.SIGINT, syscall.SIGTERM)
	<-interruptChan

	return nil
}
