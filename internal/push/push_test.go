package push

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildMessage(t *testing.T) {
	m := buildMessage("tok", Message{Title: "Hi", Body: "There", Link: "/contracts/1", Data: map[string]string{"contract_id": "1"}})
	assert.Equal(t, "tok", m.Token)
	assert.Equal(t, "Hi", m.Notification.Title)
	assert.Equal(t, "/contracts/1", m.Data["link"])
	assert.Equal(t, "1", m.Data["contract_id"])
	assert.Equal(t, "high", m.Android.Priority)
	assert.Equal(t, "There", m.APNS.Payload.Aps.Alert.Body)
}
