package utils

import (
	"fmt"
	"net"
	"reflect"
)

func DefaultIfZero[T any](v T, fallback T) T {
	if reflect.ValueOf(v).IsZero() {
		return fallback
	}
	return v
}

func Must[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}

func ListenAddrToURL(https bool, listen string) string {
	scheme := "http"
	if https {
		scheme = "https"
	}

	host, port, err := net.SplitHostPort(listen)
	if err != nil {
		return fmt.Sprintf("%s://%s", scheme, listen)
	}

	if host == "" || host == "0.0.0.0" {
		host = "127.0.0.1"
	}

	return fmt.Sprintf("%s://%s:%s", scheme, host, port)
}
