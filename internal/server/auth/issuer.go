package auth

// IssuedPair is an access/refresh pair minted at the same instant.
type IssuedPair struct {
	AccessToken   string
	RefreshToken  string
	AccessClaims  *Claims
	RefreshClaims *Claims
}

// IssuePair mints an access token carrying permissions and a refresh token
// for the same subject.
func (c *Codec) IssuePair(subject string, permissions []string) (*IssuedPair, error) {
	now := c.now()

	access, accessClaims, err := c.issueAt(now, subject, permissions, KindAccess)
	if err != nil {
		return nil, err
	}

	refresh, refreshClaims, err := c.issueAt(now, subject, nil, KindRefresh)
	if err != nil {
		return nil, err
	}

	return &IssuedPair{
		AccessToken:   access,
		RefreshToken:  refresh,
		AccessClaims:  accessClaims,
		RefreshClaims: refreshClaims,
	}, nil
}
