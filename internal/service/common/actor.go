//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common

import (
	"errors"
	"fmt"
	"os"
	"os/user"
	"strings"

	domain "github.com/oshokin/alarm-clock/internal/domain/alarm"
)

// errNoUsername is returned when neither the user database nor the environment names the user.
var errNoUsername = errors.New("cannot determine username")

// DetectActor identifies who runs alarm-clockctl. Client sends it as
// x-actor-* metadata on every call, and the daemon logs it next to each
// alarm change, so a stopped or snoozed alarm can be traced to a person.
func DetectActor() (*domain.Actor, error) {
	hostname, err := os.Hostname()
	if err != nil {
		return nil, fmt.Errorf("hostname: %w", err)
	}

	username, err := currentUsername(user.Current, os.Getenv)
	if err != nil {
		return nil, err
	}

	return &domain.Actor{
		Hostname: hostname,
		Username: username,
	}, nil
}

// currentUsername asks the user database first and falls back to USER or USERNAME,
// which covers containers running under a uid with no passwd entry.
// A Windows "DOMAIN\user" name is reduced to the user part.
func currentUsername(lookup func() (*user.User, error), getenv func(string) string) (string, error) {
	name := ""

	if u, err := lookup(); err == nil {
		name = u.Username
	}

	for _, key := range []string{"USER", "USERNAME"} {
		if name != "" {
			break
		}

		name = getenv(key)
	}

	if i := strings.LastIndex(name, `\`); i >= 0 {
		name = name[i+1:]
	}

	if name == "" {
		return "", fmt.Errorf("current user: %w", errNoUsername)
	}

	return name, nil
}
