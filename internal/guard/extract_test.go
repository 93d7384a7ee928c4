package guard

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractToken(t *testing.T) {
	tests := []struct {
		name   string
		ctx    Context
		want   string
		wantOK bool
	}{
		{
			name:   "explicit token wins",
			ctx:    Context{Token: "XXX", Headers: map[string]string{"Authorization": "Bearer YYY"}},
			want:   "XXX",
			wantOK: true,
		},
		{
			name:   "bearer header",
			ctx:    Context{Headers: map[string]string{"Authorization": "Bearer YYY"}},
			want:   "YYY",
			wantOK: true,
		},
		{
			name:   "bearer header beats cookies",
			ctx:    Context{Headers: map[string]string{"Authorization": "Bearer YYY", "Cookie": "saas_auth_token=AAA; tenant_auth_token=BBB"}},
			want:   "YYY",
			wantOK: true,
		},
		{
			name:   "wrong scheme ignored",
			ctx:    Context{Headers: map[string]string{"Authorization": "Token abc"}},
			wantOK: false,
		},
		{
			name:   "bearer without token ignored",
			ctx:    Context{Headers: map[string]string{"Authorization": "Bearer"}},
			wantOK: false,
		},
		{
			name:   "admin hint picks admin cookie",
			ctx:    Context{Headers: map[string]string{"X-Auth-Context": "saas_admin", "Cookie": "saas_auth_token=AAA; tenant_auth_token=BBB"}},
			want:   "AAA",
			wantOK: true,
		},
		{
			name:   "tenant hint picks tenant cookie",
			ctx:    Context{Headers: map[string]string{"X-Auth-Context": "tenant_user", "Cookie": "saas_auth_token=AAA; tenant_auth_token=BBB"}},
			want:   "BBB",
			wantOK: true,
		},
		{
			name:   "no hint prefers admin cookie",
			ctx:    Context{Headers: map[string]string{"Cookie": "saas_auth_token=AAA; tenant_auth_token=BBB"}},
			want:   "AAA",
			wantOK: true,
		},
		{
			name:   "no hint falls back to tenant cookie",
			ctx:    Context{Headers: map[string]string{"Cookie": "tenant_auth_token=BBB"}},
			want:   "BBB",
			wantOK: true,
		},
		{
			name:   "admin hint but only tenant cookie fails closed",
			ctx:    Context{Headers: map[string]string{"X-Auth-Context": "saas_admin", "Cookie": "tenant_auth_token=BBB"}},
			wantOK: false,
		},
		{
			name:   "no source",
			ctx:    Context{},
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := extractToken(tt.ctx)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}
