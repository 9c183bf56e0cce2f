package outputs

import (
	"fmt"
	"time"

	"github.com/markusressel/therm2go/internal/configuration"
	"github.com/markusressel/therm2go/internal/util"
)

// CmdOutput invokes an executable with the control value appended as
// the last argument.
type CmdOutput struct {
	Config configuration.OutputConfig `json:"configuration"`
}

func (output *CmdOutput) GetId() string {
	return output.Config.ID
}

func (output *CmdOutput) GetConfig() configuration.OutputConfig {
	return output.Config
}

func (output *CmdOutput) Set(value float64) error {
	timeout := 2 * time.Second
	exec := output.Config.Cmd.Exec
	args := append(append([]string{}, output.Config.Cmd.Args...), fmt.Sprintf("%.2f", value))
	_, err := util.SafeCmdExecution(exec, args, timeout)
	if err != nil {
		return fmt.Errorf("output %s: %s", output.GetId(), err.Error())
	}

	return nil
}
