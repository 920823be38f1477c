package email

import (
	"bytes"
	"fmt"
	htmltemplate "html/template"
	texttemplate "text/template"
)

// OwnerNotificationData fills the message sent to the site owner.
type OwnerNotificationData struct {
	Name      string
	Email     string
	Subject   string
	Message   string
	Timestamp string
}

// AcknowledgmentData fills the auto-reply sent to the submitter.
type AcknowledgmentData struct {
	Name        string
	Message     string
	OwnerName   string
	OwnerRole   string
	GitHubURL   string
	LinkedInURL string
	Year        int
}

// ownerNotificationHTML is the HTML template for contact form notifications
const ownerNotificationHTML = `<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>New Contact Message</title>
    <style>
        body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; background: #f5f5f5; }
        .container { max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { background: #0a0a0a; color: #ffd700; padding: 20px; text-align: center; border-radius: 5px 5px 0 0; }
        .content { padding: 30px; background: #ffffff; border-radius: 0 0 5px 5px; }
        .label { margin: 0; color: #666; font-size: 14px; text-transform: uppercase; }
        .value { margin: 5px 0 20px 0; font-size: 16px; font-weight: bold; }
        .message-box { padding: 15px; background: #f9f9f9; border-left: 4px solid #ffd700; white-space: pre-wrap; }
        .footer { margin-top: 30px; padding-top: 20px; border-top: 1px solid #e0e0e0; text-align: center; color: #999; font-size: 12px; }
    </style>
</head>
<body>
    <div class="container">
        <div class="header">
            <h1>New Contact Message</h1>
        </div>
        <div class="content">
            <p class="label">Name:</p>
            <p class="value">{{.Name}}</p>
            <p class="label">Email:</p>
            <p class="value"><a href="mailto:{{.Email}}" style="color: #ffd700;">{{.Email}}</a></p>
            <p class="label">Subject:</p>
            <p class="value">{{.Subject}}</p>
            <p class="label">Message:</p>
            <div class="message-box">{{.Message}}</div>
            <div class="footer">
                <p>This message was sent from your portfolio website.</p>
                <p>Date: {{.Timestamp}}</p>
            </div>
        </div>
    </div>
</body>
</html>`

const ownerNotificationText = `New contact message

Name: {{.Name}}
Email: {{.Email}}
Subject: {{.Subject}}

Message:
{{.Message}}

--
This message was sent from your portfolio website.
Date: {{.Timestamp}}
`

// acknowledgmentHTML is the HTML template for the auto-reply
const acknowledgmentHTML = `<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>Thanks for reaching out</title>
    <style>
        body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; background: #f5f5f5; }
        .container { max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { background: #0a0a0a; color: #ffd700; padding: 20px; text-align: center; border-radius: 5px 5px 0 0; }
        .content { padding: 30px; background: #ffffff; border-radius: 0 0 5px 5px; font-size: 16px; }
        .message-box { margin: 25px 0; padding: 20px; background: #f9f9f9; border-left: 4px solid #ffd700; white-space: pre-wrap; }
        .signature { margin-top: 30px; padding-top: 20px; border-top: 1px solid #e0e0e0; }
        a { color: #ffd700; font-weight: bold; text-decoration: none; }
        .footer { text-align: center; padding: 20px; color: #999; font-size: 12px; }
    </style>
</head>
<body>
    <div class="container">
        <div class="header">
            <h1>Thanks for getting in touch!</h1>
        </div>
        <div class="content">
            <p>Hi <strong>{{.Name}}</strong>,</p>
            <p>I have received your message and will get back to you as soon as possible. I usually reply within 24-48 hours.</p>
            <div class="message-box">
                <p style="margin: 0 0 10px 0; color: #666; font-size: 14px; text-transform: uppercase;">Your message:</p>
                {{.Message}}
            </div>
            <p>Meanwhile, you can check out my projects on <a href="{{.GitHubURL}}">GitHub</a> or connect with me on <a href="{{.LinkedInURL}}">LinkedIn</a>.</p>
            <div class="signature">
                <p>Best regards,<br><strong style="color: #ffd700;">{{.OwnerName}}</strong><br><span style="color: #666; font-size: 14px;">{{.OwnerRole}}</span></p>
            </div>
        </div>
        <div class="footer">
            <p>&copy; {{.Year}} {{.OwnerName}}. All rights reserved.</p>
        </div>
    </div>
</body>
</html>`

const acknowledgmentText = `Hi {{.Name}},

I have received your message and will get back to you as soon as possible.
I usually reply within 24-48 hours.

Your message:
{{.Message}}

Meanwhile, you can check out my projects on GitHub ({{.GitHubURL}})
or connect with me on LinkedIn ({{.LinkedInURL}}).

Best regards,
{{.OwnerName}}
{{.OwnerRole}}
`

var (
	ownerHTMLTmpl = htmltemplate.Must(htmltemplate.New("owner_html").Parse(ownerNotificationHTML))
	ownerTextTmpl = texttemplate.Must(texttemplate.New("owner_text").Parse(ownerNotificationText))
	ackHTMLTmpl   = htmltemplate.Must(htmltemplate.New("ack_html").Parse(acknowledgmentHTML))
	ackTextTmpl   = texttemplate.Must(texttemplate.New("ack_text").Parse(acknowledgmentText))
)

// RenderOwnerNotification returns the plain-text and HTML bodies for the owner notification.
func RenderOwnerNotification(data OwnerNotificationData) (text, html string, err error) {
	return render(ownerTextTmpl, ownerHTMLTmpl, data)
}

// RenderAcknowledgment returns the plain-text and HTML bodies for the sender acknowledgment.
func RenderAcknowledgment(data AcknowledgmentData) (text, html string, err error) {
	return render(ackTextTmpl, ackHTMLTmpl, data)
}

func render(textTmpl *texttemplate.Template, htmlTmpl *htmltemplate.Template, data any) (string, string, error) {
	var textBody, htmlBody bytes.Buffer

	if err := textTmpl.Execute(&textBody, data); err != nil {
		return "", "", fmt.Errorf("failed to execute %s template: %w", textTmpl.Name(), err)
	}
	if err := htmlTmpl.Execute(&htmlBody, data); err != nil {
		return "", "", fmt.Errorf("failed to execute %s template: %w", htmlTmpl.Name(), err)
	}

	return textBody.String(), htmlBody.String(), nil
}
