package model

import "fmt"

type Viewport string

const (
	ViewportDesktop Viewport = "desktop"
	ViewportMobile  Viewport = "mobile"
)

func ParseViewport(s string) (Viewport, error) {
	switch Viewport(s) {
	case ViewportDesktop, ViewportMobile:
		return Viewport(s), nil
	case "":
		return ViewportDesktop, nil
	}
	return "", fmt.Errorf("unknown viewport %q", s)
}
