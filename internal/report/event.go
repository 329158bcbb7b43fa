// Copyright 2026 the Labor Stats Pipeline authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package report

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/laborstats/pipeline/internal/storage"
)

// s3Notification is an object storage event notification. Queue deliveries
// wrap it in a record body; topic deliveries wrap it in a message.
type s3Notification struct {
	Records []struct {
		S3 *struct {
			Object struct {
				Key string `json:"key"`
			} `json:"object"`
		} `json:"s3"`

		// Body is set when the notification was delivered through a queue.
		Body string `json:"body"`
	} `json:"Records"`

	// Message is set when the notification was delivered through a topic.
	Message string `json:"Message"`
}

// pushEnvelope is a push subscription delivery.
type pushEnvelope struct {
	Message *struct {
		Attributes map[string]string `json:"attributes"`
		Data       string            `json:"data"`
	} `json:"message"`
}

// ParseNotification extracts the object keys named by a storage change
// notification. Object storage event notifications, queue and topic
// deliveries of them, and push subscription envelopes are accepted. A
// notification without records, such as a test event, yields no keys.
func ParseNotification(body []byte) ([]string, error) {
	return parseNotification(body, 0)
}

// maxNotificationDepth bounds how many wrappers are unwrapped.
const maxNotificationDepth = 3

func parseNotification(body []byte, depth int) ([]string, error) {
	if depth > maxNotificationDepth {
		return nil, fmt.Errorf("notification nested too deeply")
	}

	var probe map[string]json.RawMessage
	if err := json.Unmarshal(body, &probe); err != nil {
		return nil, fmt.Errorf("invalid notification: %w", err)
	}

	if _, ok := probe["message"]; ok {
		return parsePushEnvelope(body)
	}

	var n s3Notification
	if err := json.Unmarshal(body, &n); err != nil {
		return nil, fmt.Errorf("invalid notification: %w", err)
	}

	if n.Message != "" {
		return parseNotification([]byte(n.Message), depth+1)
	}

	var keys []string
	for _, r := range n.Records {
		switch {
		case r.S3 != nil:
			key, err := url.QueryUnescape(r.S3.Object.Key)
			if err != nil {
				return nil, fmt.Errorf("invalid object key %q: %w", r.S3.Object.Key, err)
			}
			keys = append(keys, key)
		case r.Body != "":
			inner, err := parseNotification([]byte(r.Body), depth+1)
			if err != nil {
				return nil, err
			}
			keys = append(keys, inner...)
		}
	}
	return keys, nil
}

func parsePushEnvelope(body []byte) ([]string, error) {
	var env pushEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("invalid push envelope: %w", err)
	}
	if env.Message == nil {
		return nil, fmt.Errorf("push envelope has no message")
	}

	if key := env.Message.Attributes["objectId"]; key != "" {
		return []string{key}, nil
	}

	if env.Message.Data == "" {
		return nil, nil
	}

	data, err := base64.StdEncoding.DecodeString(env.Message.Data)
	if err != nil {
		return nil, fmt.Errorf("invalid push message data: %w", err)
	}

	var obj struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return nil, fmt.Errorf("invalid push message data: %w", err)
	}
	if obj.Name == "" {
		return nil, nil
	}
	return []string{obj.Name}, nil
}

// matchingKeys returns the keys that are direct children of prefix.
func matchingKeys(prefix string, keys []string) []string {
	var out []string
	for _, k := range keys {
		k = strings.TrimLeft(k, "/")
		if _, ok := storage.ChildKey(prefix, k); ok {
			out = append(out, k)
		}
	}
	return out
}
