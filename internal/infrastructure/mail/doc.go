// Package mail renders the transactional mail templates and delivers them
// over SMTP, or to the log when no SMTP host is configured.
package mail
