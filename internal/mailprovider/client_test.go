package mailprovider

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"binfluencer/backend/internal/config"
)

func newTestClient(baseURL string) *Client {
	return NewClient(&config.MailConfig{
		BaseURL:    baseURL,
		CorpID:     "corp-123",
		CorpSecret: "secret-abc",
		Domain:     "binfluencer.xyz",
	})
}

func TestMD5Hex(t *testing.T) {
	assert.Equal(t, "d41d8cd98f00b204e9800998ecf8427e", md5Hex(""))
	assert.Equal(t, "acbd18db4cc2f85cedef654fccc4a4d8", md5Hex("foo"))
}

func TestEncryptPassword_RoundTrip(t *testing.T) {
	c := newTestClient("http://unused")

	encrypted, err := c.encryptPassword("InitPass0!")
	require.NoError(t, err)

	// 用同一 key/iv 解密验证：md5(corpsecret) 前 16 字节为 key，后 16 为 iv
	md5Secret := md5Hex("secret-abc")
	block, err := aes.NewCipher([]byte(md5Secret[:16]))
	require.NoError(t, err)

	raw, err := base64.StdEncoding.DecodeString(encrypted)
	require.NoError(t, err)
	require.Equal(t, 0, len(raw)%aes.BlockSize)

	decrypted := make([]byte, len(raw))
	cipher.NewCBCDecrypter(block, []byte(md5Secret[16:])).CryptBlocks(decrypted, raw)

	padLen := int(decrypted[len(decrypted)-1])
	require.LessOrEqual(t, padLen, aes.BlockSize)
	assert.Equal(t, "InitPass0!", string(decrypted[:len(decrypted)-padLen]))
}

func TestEnsureToken_SignatureAndCache(t *testing.T) {
	var tokenCalls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/token", r.URL.Path)
		tokenCalls++

		q := r.URL.Query()
		assert.Equal(t, "corp-123", q.Get("corpId"))
		assert.NotEmpty(t, q.Get("uuid"))
		assert.NotEmpty(t, q.Get("ts"))
		// 签名 = md5(corpId_uuid_ts_corpSecret)
		wantSign := md5Hex(q.Get("corpId") + "_" + q.Get("uuid") + "_" + q.Get("ts") + "_" + "secret-abc")
		assert.Equal(t, wantSign, q.Get("sign"))

		json.NewEncoder(w).Encode(map[string]interface{}{
			"code": 0,
			"msg":  "ok",
			"data": "token-001",
		})
	}))
	defer server.Close()

	c := newTestClient(server.URL)
	clock := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return clock }

	token, err := c.ensureToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "token-001", token)
	assert.Equal(t, 1, tokenCalls)

	// 90 分钟内命中缓存
	clock = clock.Add(89 * time.Minute)
	token, err = c.ensureToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "token-001", token)
	assert.Equal(t, 1, tokenCalls)

	// 过期后重新获取
	clock = clock.Add(2 * time.Minute)
	_, err = c.ensureToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, tokenCalls)
}

func TestExtractAccessToken_Shapes(t *testing.T) {
	cases := []struct {
		name string
		body string
		want string
	}{
		{"data 为字符串", `{"code":0,"data":"tok-a"}`, "tok-a"},
		{"data 为对象", `{"code":0,"data":{"access_token":"tok-b"}}`, "tok-b"},
		{"data 为驼峰对象", `{"code":0,"data":{"accessToken":"tok-c"}}`, "tok-c"},
		{"顶层字段", `{"code":0,"access_token":"tok-d"}`, "tok-d"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var result tokenResponse
			require.NoError(t, json.Unmarshal([]byte(tc.body), &result))
			assert.Equal(t, tc.want, extractAccessToken(result))
		})
	}
}

func TestAddUser(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/token":
			json.NewEncoder(w).Encode(map[string]interface{}{"code": 0, "data": "tok"})
		case "/api/user/addUser":
			q := r.URL.Query()
			assert.Equal(t, "tok", q.Get("access_token"))
			assert.NotEmpty(t, q.Get("sign"))

			var body addUserRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "emilyzhang@binfluencer.xyz", body.LoginUserID)
			// 密码必须是密文
			assert.NotEqual(t, "InitPass0!", body.Password)
			assert.Equal(t, 1024, body.Mail.Quota)
			assert.True(t, body.Mail.SMTP)
			assert.True(t, body.Mail.IMAP)
			assert.Equal(t, 200, body.Mail.MaxRcptNum)
			assert.Equal(t, 2, body.Gender)
			assert.Equal(t, "binfluencer.xyz", body.DomainName)

			json.NewEncoder(w).Encode(map[string]interface{}{"code": 0, "msg": "ok"})
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer server.Close()

	c := newTestClient(server.URL)
	err := c.AddUser(context.Background(), AddUserInput{
		LoginUserID: "emilyzhang@binfluencer.xyz",
		Password:    "InitPass0!",
		Firstname:   "Zhang",
		Lastname:    "Emily",
	})
	require.NoError(t, err)
}

func TestAddUser_DuplicateAddress(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/token" {
			json.NewEncoder(w).Encode(map[string]interface{}{"code": 0, "data": "tok"})
			return
		}
		json.NewEncoder(w).Encode(map[string]interface{}{"code": 40006902, "msg": "账号已存在"})
	}))
	defer server.Close()

	c := newTestClient(server.URL)
	err := c.AddUser(context.Background(), AddUserInput{
		LoginUserID: "taken@binfluencer.xyz",
		Password:    "InitPass0!",
	})
	assert.ErrorIs(t, err, ErrAddressExists)
}

func TestQueryUsers(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/token" {
			json.NewEncoder(w).Encode(map[string]interface{}{"code": 0, "data": "tok"})
			return
		}
		require.Equal(t, "/api/user/queryUsers", r.URL.Path)

		var body queryUsersRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, 1, body.PageNo)
		assert.Equal(t, 20, body.PageSize)
		assert.Equal(t, "emily", body.QueryMap["account"])

		json.NewEncoder(w).Encode(map[string]interface{}{
			"code": 0,
			"data": map[string]interface{}{
				"count": 1,
				"list": []map[string]interface{}{
					{"loginuserid": "emilyzhang@binfluencer.xyz", "displayName": "Emily"},
				},
			},
		})
	}))
	defer server.Close()

	c := newTestClient(server.URL)
	result, err := c.QueryUsers(context.Background(), "emily", 1, 20)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Count)
	require.Len(t, result.List, 1)
	assert.Equal(t, "emilyzhang@binfluencer.xyz", result.List[0].LoginUserID)
}

func TestMapProviderError(t *testing.T) {
	assert.ErrorIs(t, mapProviderError("40006902", ""), ErrAddressExists)
	assert.ErrorIs(t, mapProviderError("20002005", ""), ErrAddressMalformed)
	assert.ErrorIs(t, mapProviderError("20002004", ""), ErrEncryptFailed)

	var pe *ProviderError
	err := mapProviderError("99999", "unknown failure")
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "99999", pe.Code)
}
