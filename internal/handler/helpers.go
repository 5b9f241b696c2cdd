package handler

import (
	"fmt"
	"strconv"
	"strings"
)

func parseUintParam(value string, name string) (uint, error) {
	trimmed := strings.TrimSpace(value)
	parsed, err := strconv.ParseUint(trimmed, 10, 64)
	if err != nil || parsed == 0 {
		return 0, fmt.Errorf("invalid %s", name)
	}
	return uint(parsed), nil
}
