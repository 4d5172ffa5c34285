// Package guard decides, per page request, whether to let the request
// through, bounce it between /login and the dashboard, or break a redirect
// loop. It looks at cookie presence only; full session verification happens
// later in the page itself, which is why a loop counter is needed at all.
package guard

import "strings"

type Action int

const (
	Pass Action = iota
	Redirect
	ForceLogout
)

func (a Action) String() string {
	switch a {
	case Redirect:
		return "redirect"
	case ForceLogout:
		return "force_logout"
	default:
		return "pass"
	}
}

const (
	LoginPath        = "/login"
	DashboardPath    = "/dashboard"
	DefaultLanding   = "/dashboard/schedule"
	ForcedLogoutPath = "/login?forced_logout=true"

	// LoopLimit consecutive guard redirects trigger a forced logout.
	LoopLimit = 3
)

type Input struct {
	Path       string
	HasSession bool
	PriorCount int
}

type Decision struct {
	Action   Action
	Location string // empty for Pass
	Count    int    // value to persist for the next request
}

func Decide(in Input) Decision {
	switch {
	case in.PriorCount >= LoopLimit:
		return Decision{Action: ForceLogout, Location: ForcedLogoutPath, Count: 0}
	case IsProtected(in.Path) && !in.HasSession:
		return Decision{Action: Redirect, Location: LoginPath, Count: in.PriorCount + 1}
	case IsLoginEntry(in.Path) && in.HasSession:
		return Decision{Action: Redirect, Location: DefaultLanding, Count: in.PriorCount + 1}
	default:
		return Decision{Action: Pass, Count: 0}
	}
}

func IsProtected(path string) bool {
	return path == DashboardPath || strings.HasPrefix(path, DashboardPath+"/")
}

func IsLoginEntry(path string) bool {
	return path == LoginPath || path == "/"
}
