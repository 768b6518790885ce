package notifications

import (
	"github.com/nicholas-fedor/container-check/pkg/types"
)

// StaticData is the part of the notification template data model set upon initialization.
type StaticData struct {
	Title string
	Host  string
}

// Data is the notification template data model.
type Data struct {
	StaticData
	Summary types.Summary
}
