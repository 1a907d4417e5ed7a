package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoginResult_UserIDNumberOrString(t *testing.T) {
	tests := []struct {
		name string
		body string
		want UserID
	}{
		{"number", `{"message":"ok","user_id":42}`, "42"},
		{"string", `{"message":"ok","user_id":"u42"}`, "u42"},
		{"null", `{"message":"ok","user_id":null}`, ""},
		{"missing", `{"message":"ok"}`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var res LoginResult
			require.NoError(t, json.Unmarshal([]byte(tt.body), &res))
			require.Equal(t, tt.want, res.UserID)
		})
	}
}

func TestUserID_Rejects(t *testing.T) {
	var res LoginResult
	require.Error(t, json.Unmarshal([]byte(`{"user_id":true}`), &res))
}

func TestRating_EncodesNumericUserID(t *testing.T) {
	data, err := json.Marshal(Rating{UserID: "7", AnimeID: 5114, Rating: 9})
	require.NoError(t, err)
	require.JSONEq(t, `{"user_id":7,"anime_id":5114,"rating":9}`, string(data))

	data, err = json.Marshal(Rating{UserID: "u42", AnimeID: 1, Rating: 1})
	require.NoError(t, err)
	require.JSONEq(t, `{"user_id":"u42","anime_id":1,"rating":1}`, string(data))
}

func TestAnimeDetails_Aired(t *testing.T) {
	require.Equal(t, "Spring 2009", (&AnimeDetails{Season: "spring", Year: 2009}).Aired())
	require.Equal(t, "2009", (&AnimeDetails{Year: 2009}).Aired())
	require.Equal(t, "", (&AnimeDetails{}).Aired())
}

func TestValidRating(t *testing.T) {
	require.False(t, ValidRating(0))
	require.True(t, ValidRating(1))
	require.True(t, ValidRating(10))
	require.False(t, ValidRating(11))
}
