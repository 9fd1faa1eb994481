package types

import "encoding/json"

type Config interface {
	Validate() error
	PostProcess() error
}

type Password string

func (p Password) MarshalJSON() ([]byte, error) {
	return json.Marshal("******")
}

type Map map[string]string
