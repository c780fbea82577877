package notify

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gopkgmail "gopkg.in/gomail.v2"
)

type fakeDialer struct {
	sent []*gopkgmail.Message
}

func (d *fakeDialer) DialAndSend(m ...*gopkgmail.Message) error {
	d.sent = append(d.sent, m...)
	return nil
}

func writeTemplates(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "order_status.html"),
		[]byte(`<p>Hi {{.name}}, order {{.orderId}} is now <b>{{.status}}</b></p>`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "order_status.txt"),
		[]byte(`Hi {{.name}}, order {{.orderId}} is now {{.status}}`), 0o644))
	return dir
}

func TestEmailSender_RendersBothParts(t *testing.T) {
	d := &fakeDialer{}
	s := &EmailSender{cfg: SMTPConfig{From: "shop@example.com", TMPLDir: writeTemplates(t)}, dialer: d}

	err := s.Send(Notification{
		To:       "ada@example.com",
		Subject:  "Order update",
		Template: "order_status",
		Data:     map[string]any{"name": "<Ada>", "orderId": "o-1", "status": "Shipped"},
	})
	require.NoError(t, err)
	require.Len(t, d.sent, 1)

	m := d.sent[0]
	assert.Equal(t, []string{"ada@example.com"}, m.GetHeader("To"))
	assert.Equal(t, []string{"shop@example.com"}, m.GetHeader("From"))

	var buf bytes.Buffer
	_, err = m.WriteTo(&buf)
	require.NoError(t, err)
	body := buf.String()
	assert.Contains(t, body, "Hi <Ada>, order o-1 is now Shipped")
	assert.Contains(t, body, "&lt;Ada&gt;")
}

func TestEmailSender_MissingTemplate(t *testing.T) {
	d := &fakeDialer{}
	s := &EmailSender{cfg: SMTPConfig{TMPLDir: t.TempDir()}, dialer: d}

	err := s.Send(Notification{To: "a@example.com", Template: "nope"})
	require.Error(t, err)
	assert.Empty(t, d.sent)
}
