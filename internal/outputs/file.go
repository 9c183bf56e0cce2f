package outputs

import (
	"fmt"

	"github.com/markusressel/therm2go/internal/configuration"
	"github.com/markusressel/therm2go/internal/util"
)

type FileOutput struct {
	Config configuration.OutputConfig `json:"configuration"`
}

func (output *FileOutput) GetId() string {
	return output.Config.ID
}

func (output *FileOutput) GetConfig() configuration.OutputConfig {
	return output.Config
}

func (output *FileOutput) Set(value float64) error {
	filePath, err := util.ResolveHomeDirPath(output.Config.File.Path)
	if err != nil {
		return err
	}

	content := fmt.Sprintf("%.2f", value)
	err = util.WriteStringToFileAtomic(content, filePath)
	if err != nil {
		return fmt.Errorf("output %s: %s", output.GetId(), err.Error())
	}

	return nil
}
