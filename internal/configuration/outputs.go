package configuration

type OutputConfig struct {
	ID   string            `json:"id"`
	File *FileOutputConfig `json:"file,omitempty"`
	Cmd  *CmdOutputConfig  `json:"cmd,omitempty"`
	Mqtt *MqttOutputConfig `json:"mqtt,omitempty"`
}

type FileOutputConfig struct {
	Path string `json:"path"`
}

// CmdOutputConfig invokes an executable with the output value
// appended as the last argument
type CmdOutputConfig struct {
	Exec string   `json:"exec"`
	Args []string `json:"args"`
}

type MqttOutputConfig struct {
	Topic    string `json:"topic"`
	Retained bool   `json:"retained"`
}
