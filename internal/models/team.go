package models

// Team lists the static membership used to classify contributors
type Team struct {
	Maintainers []string `json:"maintainers" yaml:"maintainers"`
	Alumni      []string `json:"alumni" yaml:"alumni"`
}
