// Package health reports dependency health derived from circuit state:
// a closed circuit is healthy, a probing half-open circuit is degraded,
// and an open circuit is unhealthy with its open duration and remaining
// cooldown exposed. The HTTP handler lets operators distinguish "that
// one call was slow" from "this dependency has been down for minutes".
package health
