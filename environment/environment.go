// Package environment maps deployment environment names to the endpoints
// that make up a health check sweep of that environment.
package environment

import (
	"fmt"
	"strings"

	berrors "github.com/eastcoast-online/envcheck/errors"
)

// Environment is one of the recognized deployment environments. The zero
// value is not a valid Environment; obtain one with Parse.
type Environment int

const (
	Dev Environment = iota + 1
	Stage
	Prod
)

// All returns the recognized environments in the order they are listed to
// operators.
func All() []Environment {
	return []Environment{Dev, Stage, Prod}
}

func (e Environment) String() string {
	switch e {
	case Dev:
		return "dev"
	case Stage:
		return "stage"
	case Prod:
		return "prod"
	default:
		return fmt.Sprintf("Environment(%d)", int(e))
	}
}

// Names returns the tokens accepted by Parse, comma separated.
func Names() string {
	var names []string
	for _, e := range All() {
		names = append(names, e.String())
	}
	return strings.Join(names, ", ")
}

// Parse converts a command line token into an Environment. Matching is exact
// and case-sensitive. An unrecognized token returns an InvalidEnvironment
// error.
func Parse(token string) (Environment, error) {
	for _, e := range All() {
		if token == e.String() {
			return e, nil
		}
	}
	return 0, berrors.InvalidEnvironmentError(
		"unrecognized environment %q, expected one of: %s", token, Names())
}

// suffix is appended to subdomains of non-production environments. Production
// hosts carry no suffix at all.
func (e Environment) suffix() string {
	switch e {
	case Dev:
		return "-dev"
	case Stage:
		return "-stage"
	default:
		return ""
	}
}

// URLs returns the five endpoints checked for e, in order: the versioned API,
// the application root, the express API version, the evacuation API version
// and the "new" site root.
func (e Environment) URLs() []string {
	suffix := e.suffix()
	compact := strings.ReplaceAll(suffix, "-", "")

	var dot, dash string
	if suffix != "" {
		dot = "."
		dash = "-"
	}

	return []string{
		fmt.Sprintf("https://api%s.eastcoast-online.net/version", suffix),
		fmt.Sprintf("https://%s%seastcoast-online.net", compact, dot),
		fmt.Sprintf("https://app%s.eastcoastexpress.net/api/v2/version", suffix),
		fmt.Sprintf("https://%s%sevac-api.eastcoast-online.net/api/version", compact, dash),
		fmt.Sprintf("https://new%s.eastcoast-online.net/", suffix),
	}
}
