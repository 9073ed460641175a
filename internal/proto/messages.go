package proto

type TokenPair struct {
	AccessToken  string `cbor:"access_token"`
	RefreshToken string `cbor:"refresh_token"`
}

type AuthRequest struct {
	Username string `cbor:"username"`
	Password string `cbor:"password"`
}

type AuthResponse struct {
	Code    int32      `cbor:"code"`
	Message string     `cbor:"message,omitempty"`
	Tokens  *TokenPair `cbor:"tokens,omitempty"`
}

type RefreshRequest struct {
	RefreshToken string `cbor:"refresh_token"`
}

type RefreshResponse struct {
	Code    int32      `cbor:"code"`
	Message string     `cbor:"message,omitempty"`
	Tokens  *TokenPair `cbor:"tokens,omitempty"`
}

type CheckPermissionRequest struct {
	AccessToken string `cbor:"access_token"`
	Permission  string `cbor:"permission"`
}

type CheckPermissionResponse struct {
	Code      int32  `cbor:"code"`
	Message   string `cbor:"message,omitempty"`
	SubjectID string `cbor:"subject_id,omitempty"`
}

type LogoutRequest struct {
	AccessToken string `cbor:"access_token"`
}

type LogoutResponse struct {
	Code    int32  `cbor:"code"`
	Message string `cbor:"message,omitempty"`
}
