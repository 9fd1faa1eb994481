package utils

import (
	"github.com/segmentio/ksuid"
	uuid "github.com/satori/go.uuid"
)

func UUID() string {
	return uuid.NewV4().String()
}

func IsValidUUID(id string) bool {
	_, err := uuid.FromString(id)
	return err == nil
}

// KSUID returns a time-sortable id
func KSUID() string {
	return ksuid.New().String()
}

func IsValidKSUID(id string) bool {
	_, err := ksuid.Parse(id)
	return err == nil
}
