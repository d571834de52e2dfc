// Licensed to the lpel project under one or more contributor
// license agreements. See the NOTICE file distributed with
// this work for additional information regarding copyright
// ownership. The lpel project licenses this file to you under
// the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing,
// software distributed under the License is distributed on an
// "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY
// KIND, either express or implied.  See the License for the
// specific language governing permissions and limitations
// under the License.

package admin

import (
	"net/http"
	"strings"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/gin-gonic/gin"
)

// tokenTTL is how long an issued bearer token remains valid.
const tokenTTL = 12 * time.Hour

type claims struct {
	jwt.StandardClaims
}

// Authentication guards the admin plane with a shared-secret bearer
// token. A zero-value secret disables checking (Middleware becomes a
// pass-through), matching the config contract: empty auth-secret means
// local/dev use only.
type Authentication struct {
	secret []byte
}

// NewAuthentication builds an Authentication using secret as the HMAC key.
func NewAuthentication(secret string) *Authentication {
	return &Authentication{secret: []byte(secret)}
}

// IssueToken mints a bearer token signed with the configured secret.
func (a *Authentication) IssueToken(subject string) (string, error) {
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		StandardClaims: jwt.StandardClaims{
			Subject:   subject,
			IssuedAt:  time.Now().Unix(),
			ExpiresAt: time.Now().Add(tokenTTL).Unix(),
		},
	})
	return tok.SignedString(a.secret)
}

// Middleware rejects requests without a valid "Authorization: Bearer
// <token>" header. Disabled (always allows) when no secret is configured.
func (a *Authentication) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if len(a.secret) == 0 {
			c.Next()
			return
		}
		header := c.GetHeader("Authorization")
		tokenStr := strings.TrimPrefix(header, "Bearer ")
		if tokenStr == "" || tokenStr == header {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}
		var cl claims
		_, err := jwt.ParseWithClaims(tokenStr, &cl, func(*jwt.Token) (interface{}, error) {
			return a.secret, nil
		})
		if err != nil {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}
		c.Next()
	}
}
