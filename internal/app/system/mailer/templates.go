// internal/app/system/mailer/templates.go
package mailer

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/dalemusser/hidapi/internal/app/system/htmlsanitize"
)

// Line is one bilingual change line.
type Line struct {
	EN string
	FR string
}

// ContactUpdateData holds data for the contact-updated notification.
type ContactUpdateData struct {
	SiteName      string
	RecipientName string
	ActorName     string
	AdminEmail    string
	Location      string // empty for the global contact
	Lines         []Line
}

// RolesChangedData holds data for the roles-changed notification.
type RolesChangedData struct {
	SiteName      string
	RecipientName string
	ActorName     string
	AdminEmail    string
	Lines         []Line
}

// CheckedOutData holds data for the checked-out notification.
type CheckedOutData struct {
	SiteName      string
	RecipientName string
	ActorName     string
	AdminEmail    string
	Location      string
}

// view is what the shared HTML layout renders.
type view struct {
	SiteName   string
	Greeting   string
	IntroEN    string
	IntroFR    string
	Lines      []Line
	AdminEmail string
}

// BuildContactUpdateEmail lists the changes another person made to the
// recipient's contact.
func BuildContactUpdateEmail(data ContactUpdateData) Email {
	actor := htmlsanitize.Strip(data.ActorName)
	where, whereFR := "", ""
	if data.Location != "" {
		where = " in " + htmlsanitize.Strip(data.Location)
		whereFR = " pour " + htmlsanitize.Strip(data.Location)
	}
	v := view{
		SiteName:   data.SiteName,
		Greeting:   greeting(data.RecipientName),
		IntroEN:    fmt.Sprintf("%s updated your profile%s:", actor, where),
		IntroFR:    fmt.Sprintf("%s a mis à jour votre profil%s :", actor, whereFR),
		Lines:      cleanLines(data.Lines),
		AdminEmail: data.AdminEmail,
	}
	return Email{
		Subject:  fmt.Sprintf("Your %s profile has been updated / Votre profil %s a été mis à jour", data.SiteName, data.SiteName),
		TextBody: buildText(v),
		HTMLBody: buildHTML(v),
	}
}

// BuildRolesChangedEmail tells the recipient which roles were granted or
// removed.
func BuildRolesChangedEmail(data RolesChangedData) Email {
	actor := htmlsanitize.Strip(data.ActorName)
	v := view{
		SiteName:   data.SiteName,
		Greeting:   greeting(data.RecipientName),
		IntroEN:    fmt.Sprintf("%s changed your roles:", actor),
		IntroFR:    fmt.Sprintf("%s a modifié vos rôles :", actor),
		Lines:      cleanLines(data.Lines),
		AdminEmail: data.AdminEmail,
	}
	return Email{
		Subject:  fmt.Sprintf("Your %s roles have changed / Vos rôles %s ont changé", data.SiteName, data.SiteName),
		TextBody: buildText(v),
		HTMLBody: buildHTML(v),
	}
}

// BuildCheckedOutEmail tells the recipient they were checked out of an
// operation.
func BuildCheckedOutEmail(data CheckedOutData) Email {
	actor := htmlsanitize.Strip(data.ActorName)
	loc := htmlsanitize.Strip(data.Location)
	v := view{
		SiteName:   data.SiteName,
		Greeting:   greeting(data.RecipientName),
		IntroEN:    fmt.Sprintf("%s checked you out of %s.", actor, loc),
		IntroFR:    fmt.Sprintf("%s a enregistré votre départ de %s.", actor, loc),
		AdminEmail: data.AdminEmail,
	}
	return Email{
		Subject:  fmt.Sprintf("You were checked out of %s / Départ enregistré : %s", loc, loc),
		TextBody: buildText(v),
		HTMLBody: buildHTML(v),
	}
}

func greeting(name string) string {
	name = htmlsanitize.Strip(name)
	if name == "" {
		return "Hello / Bonjour,"
	}
	return fmt.Sprintf("Hello / Bonjour %s,", name)
}

func cleanLines(lines []Line) []Line {
	out := make([]Line, 0, len(lines))
	for _, l := range lines {
		out = append(out, Line{EN: htmlsanitize.Strip(l.EN), FR: htmlsanitize.Strip(l.FR)})
	}
	return out
}

func buildText(v view) string {
	var buf bytes.Buffer
	buf.WriteString(v.Greeting + "\n\n")
	buf.WriteString(v.IntroEN + "\n")
	for _, l := range v.Lines {
		buf.WriteString("  - " + l.EN + "\n")
	}
	buf.WriteString("\n" + v.IntroFR + "\n")
	for _, l := range v.Lines {
		buf.WriteString("  - " + l.FR + "\n")
	}
	if v.AdminEmail != "" {
		buf.WriteString(fmt.Sprintf("\nQuestions? / Des questions ? %s\n", v.AdminEmail))
	}
	buf.WriteString("\n" + v.SiteName + "\n")
	return buf.String()
}

var layout = template.Must(template.New("notification").Parse(layoutHTML))

func buildHTML(v view) string {
	var buf bytes.Buffer
	_ = layout.Execute(&buf, v)
	return buf.String()
}

const layoutHTML = `<!DOCTYPE html>
<html>
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>{{.SiteName}}</title>
</head>
<body style="margin: 0; padding: 0; font-family: Arial, sans-serif; background-color: #f3f4f6;">
  <table role="presentation" width="100%" cellspacing="0" cellpadding="0" style="background-color: #f3f4f6;">
    <tr>
      <td align="center" style="padding: 32px 16px;">
        <table role="presentation" width="100%" cellspacing="0" cellpadding="0" style="max-width: 560px; background-color: #ffffff; border-radius: 8px;">
          <tr>
            <td style="padding: 24px 32px; border-bottom: 1px solid #e5e7eb;">
              <h1 style="margin: 0; font-size: 20px; color: #1f2937;">{{.SiteName}}</h1>
            </td>
          </tr>
          <tr>
            <td style="padding: 24px 32px; font-size: 15px; color: #374151; line-height: 1.5;">
              <p style="margin: 0 0 16px;">{{.Greeting}}</p>
              <p style="margin: 0 0 8px;">{{.IntroEN}}</p>
              {{if .Lines}}<ul style="margin: 0 0 24px;">{{range .Lines}}<li>{{.EN}}</li>{{end}}</ul>{{end}}
              <p lang="fr" style="margin: 0 0 8px;">{{.IntroFR}}</p>
              {{if .Lines}}<ul lang="fr" style="margin: 0;">{{range .Lines}}<li>{{.FR}}</li>{{end}}</ul>{{end}}
            </td>
          </tr>
          {{if .AdminEmail}}<tr>
            <td style="padding: 16px 32px; background-color: #f9fafb; border-top: 1px solid #e5e7eb; font-size: 12px; color: #6b7280;">
              Questions? / Des questions ? <a href="mailto:{{.AdminEmail}}">{{.AdminEmail}}</a>
            </td>
          </tr>{{end}}
        </table>
      </td>
    </tr>
  </table>
</body>
</html>`
