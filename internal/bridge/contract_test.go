package bridge

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidateClipboardWrite(t *testing.T) {
	require.NoError(t, validateClipboardWrite(json.RawMessage(`{"text":"hi"}`)))
	require.NoError(t, validateClipboardWrite(json.RawMessage(`{"text":""}`)))

	err := validateClipboardWrite(json.RawMessage(`{"text":"hi","extra":1}`))
	require.Error(t, err)
	require.Equal(t, ErrInvalidArguments, KindOf(err))
}

func TestValidateShare(t *testing.T) {
	require.NoError(t, validateShare(json.RawMessage(`{"url":"https://example.com"}`)))
	require.NoError(t, validateShare(json.RawMessage(`{"title":"t","text":"x"}`)))

	err := validateShare(json.RawMessage(`{}`))
	require.Error(t, err, "empty share payload must be rejected")

	err = validateShare(json.RawMessage(`{"href":"nope"}`))
	require.Equal(t, ErrInvalidArguments, KindOf(err))
}

func TestValidateNotificationShowRequiresTitle(t *testing.T) {
	require.NoError(t, validateNotificationShow(json.RawMessage(`{"title":"hey","body":"b"}`)))

	err := validateNotificationShow(json.RawMessage(`{"body":"only"}`))
	require.Error(t, err)
	require.Equal(t, ErrInvalidArguments, KindOf(err))
}

func TestValidateVibratePattern(t *testing.T) {
	require.NoError(t, validateVibrate(json.RawMessage(`{"pattern":[100,50,100]}`)))

	require.Error(t, validateVibrate(json.RawMessage(`{"pattern":[]}`)))
	require.Error(t, validateVibrate(json.RawMessage(`{"pattern":[100,-5]}`)))
}

func TestValidateOrientationLock(t *testing.T) {
	require.NoError(t, validateOrientationLock(json.RawMessage(`{"orientation":"portrait-primary"}`)))

	err := validateOrientationLock(json.RawMessage(`{"orientation":"diagonal"}`))
	require.Error(t, err)
	require.Equal(t, ErrInvalidArguments, KindOf(err))
}

func TestValidateNoArgsToleratesNullAndEmptyObject(t *testing.T) {
	validate := validateNoArgs("battery.get")
	require.NoError(t, validate(nil))
	require.NoError(t, validate(json.RawMessage(`null`)))
	require.NoError(t, validate(json.RawMessage(`{}`)))

	require.Error(t, validate(json.RawMessage(`{"verbose":true}`)))
}

func TestValidateGeolocationOptions(t *testing.T) {
	validate := validateGeolocationOptions("geolocation.getCurrentPosition")
	require.NoError(t, validate(json.RawMessage(`{"enableHighAccuracy":true,"timeout":5000}`)))
	require.NoError(t, validate(nil))

	require.Error(t, validate(json.RawMessage(`{"timeout":-1}`)))
}

func TestValidateClearWatchRequiresID(t *testing.T) {
	require.NoError(t, validateClearWatch(json.RawMessage(`{"watchId":"abc"}`)))
	require.Error(t, validateClearWatch(json.RawMessage(`{}`)))
}

func TestParseCallRequest(t *testing.T) {
	req, err := ParseCallRequest([]byte(`{"correlationId":"b-1","capability":"clipboard.read"}`))
	require.NoError(t, err)
	require.Equal(t, "b-1", req.CorrelationID)

	_, err = ParseCallRequest([]byte(`{"capability":"clipboard.read"}`))
	require.Error(t, err)

	_, err = ParseCallRequest([]byte(`{"correlationId":"b-2"}`))
	require.Error(t, err)

	_, err = ParseCallRequest([]byte(`not json`))
	require.Error(t, err)
}
