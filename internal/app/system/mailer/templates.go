// internal/app/system/mailer/templates.go
package mailer

import (
	"bytes"
	"fmt"
	"html/template"
)

// OTPEmailData holds data for the account verification email.
type OTPEmailData struct {
	SiteName  string
	Username  string
	Code      string
	ExpiresIn string // e.g., "10 minutes"
}

// BuildOTPEmail creates the verification email with both HTML and text bodies.
func BuildOTPEmail(to string, data OTPEmailData) Email {
	return Email{
		To:       to,
		Subject:  fmt.Sprintf("Your %s verification code", data.SiteName),
		TextBody: buildOTPText(data),
		HTMLBody: buildOTPHTML(data),
	}
}

func buildOTPText(data OTPEmailData) string {
	var buf bytes.Buffer
	if data.Username != "" {
		fmt.Fprintf(&buf, "Hi %s,\n\n", data.Username)
	}
	fmt.Fprintf(&buf, "Your %s verification code is: %s\n\n", data.SiteName, data.Code)
	fmt.Fprintf(&buf, "This code expires in %s.\n\n", data.ExpiresIn)
	buf.WriteString("If you did not create an account, you can safely ignore this email.\n")
	return buf.String()
}

var otpHTML = template.Must(template.New("otp").Parse(otpHTMLTemplate))

func buildOTPHTML(data OTPEmailData) string {
	var buf bytes.Buffer
	_ = otpHTML.Execute(&buf, data)
	return buf.String()
}

const otpHTMLTemplate = `<!DOCTYPE html>
<html>
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>Verification Code</title>
</head>
<body style="margin: 0; padding: 0; font-family: Arial, sans-serif; background-color: #f3f4f6;">
  <table role="presentation" width="100%" cellspacing="0" cellpadding="0">
    <tr>
      <td align="center" style="padding: 40px 20px;">
        <table role="presentation" width="100%" cellspacing="0" cellpadding="0" style="max-width: 480px; background-color: #ffffff; border-radius: 8px;">
          <tr>
            <td style="padding: 32px; text-align: center; border-bottom: 1px solid #e5e7eb;">
              <h1 style="margin: 0; font-size: 24px; color: #b91c1c;">{{.SiteName}}</h1>
            </td>
          </tr>
          <tr>
            <td style="padding: 32px;">
              {{if .Username}}<p style="margin: 0 0 16px; font-size: 16px; color: #374151;">Hi {{.Username}},</p>{{end}}
              <p style="margin: 0 0 24px; font-size: 16px; color: #374151;">Your verification code is:</p>
              <div style="background-color: #f3f4f6; border-radius: 8px; padding: 24px; text-align: center;">
                <span style="font-size: 32px; font-weight: 700; letter-spacing: 8px; font-family: 'Courier New', monospace;">{{.Code}}</span>
              </div>
              <p style="margin: 24px 0 0; font-size: 13px; color: #9ca3af; text-align: center;">This code expires in {{.ExpiresIn}}.</p>
            </td>
          </tr>
          <tr>
            <td style="padding: 24px 32px; background-color: #f9fafb; border-top: 1px solid #e5e7eb;">
              <p style="margin: 0; font-size: 12px; color: #9ca3af; text-align: center;">If you did not create an account, you can safely ignore this email.</p>
            </td>
          </tr>
        </table>
      </td>
    </tr>
  </table>
</body>
</html>`
