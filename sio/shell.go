package sio

import (
	"bytes"
	"fmt"
	"os/exec"
	"regexp"
)

var shell = regexp.MustCompile(`<<(.*?)>>`)

// ShellExpand replaces each '<<CMD>>' with the output of CMD run by
// bash.  Use at your own risk.
func ShellExpand(msg string) (string, error) {
	var (
		literals = shell.Split(msg, -1)
		cmds     = shell.FindAllStringSubmatch(msg, -1)
		acc      bytes.Buffer
	)
	acc.WriteString(literals[0])
	for i, m := range cmds {
		var out bytes.Buffer
		cmd := exec.Command("bash", "-c", m[1])
		cmd.Stdout = &out
		if err := cmd.Run(); err != nil {
			return "", fmt.Errorf("shell error %s on %s", err, m[1])
		}
		acc.Write(bytes.TrimRight(out.Bytes(), "\n"))
		acc.WriteString(literals[i+1])
	}
	return acc.String(), nil
}
