package cmd

import (
	"fmt"
	"io/ioutil"
	"os/exec"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var stopCmd = &cobra.Command{
	Use:          "stop",
	Short:        "Stop the server",
	RunE:         stopCmdF,
	SilenceUsage: true,
}

func init() {
	RootCmd.AddCommand(stopCmd)
}

func stopCmdF(cmd *cobra.Command, args []string) error {
	_, dir := getAppDir()

	file := fmt.Sprintf("%s/%s", dir, "cc.lock")
	pid, _ := ioutil.ReadFile(file)
	command := exec.Command("kill", string(pid))
	command.Start()
	log.Infof("Server stop, [PID] %s", string(pid))

	return nil
}
