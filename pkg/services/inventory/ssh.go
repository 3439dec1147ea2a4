package inventory

import (
	"strings"
	"text/template"

	"github.com/de-tools/fleet-atlas/pkg/models/domain"
	"github.com/samber/lo"
)

const defaultSSHUser = "ec2-user"

var sshTemplate = template.Must(template.New("ssh").Parse(`{{range .}}Host {{.Host}}
   HostName {{.HostName}}
   StrictHostKeyChecking no
{{- if .User}}
   User {{.User}}
   IdentityFile {{.IdentityFile}}
{{- end}}

{{end}}`))

type sshHost struct {
	Host         string
	HostName     string
	User         string
	IdentityFile string
}

// SSHConfig renders an ssh_config block for every running non-Windows unit
// with a key pair. An empty account selects every account. Units launched by
// a stack are left to the caller's own user and key.
func (v View) SSHConfig(account string) (string, error) {
	units := lo.Filter(v.snapshot.Units, func(u *domain.RunningUnit, _ int) bool {
		return (account == "" || u.Location.Account == account) &&
			u.IsRunning() && !u.IsWindows() && u.KeyName != ""
	})

	hosts := lo.Map(units, func(u *domain.RunningUnit, _ int) sshHost {
		host := sshHost{
			Host:     strings.ReplaceAll(strings.ToLower(u.Name), " ", "-"),
			HostName: u.PublicIP,
		}
		if host.HostName == "" {
			host.HostName = u.PrivateIP
		}
		if _, ok := u.Tags[domain.StackNameTag]; !ok {
			host.User = defaultSSHUser
			host.IdentityFile = "~/.ssh/" + u.KeyName + ".pem"
		}
		return host
	})

	var b strings.Builder
	if err := sshTemplate.Execute(&b, hosts); err != nil {
		return "", err
	}
	return b.String(), nil
}
