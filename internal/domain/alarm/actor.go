package alarm

// Actor identifies who issued a remote command.
type Actor struct {
	// Hostname is the machine the command came from.
	Hostname string `json:"hostname"`
	// Username is the account that issued the command.
	Username string `json:"username"`
}

// String renders the actor as user@host.
func (a *Actor) String() string {
	if a == nil {
		return "unknown"
	}

	return a.Username + "@" + a.Hostname
}
