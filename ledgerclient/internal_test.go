// Copyright 2026 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package ledgerclient

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecodeMessage(t *testing.T) {
	testDefs := []struct {
		raw      string
		expected *string
	}{
		{raw: "", expected: nil},
		{raw: "zz", expected: nil},
		{raw: "0068656C6C6F", expected: ptr("hello")},
		{raw: "68656C6C6F", expected: ptr("hello")},
		{raw: "00", expected: ptr("")},
		{raw: "00FFFE", expected: nil},
		{raw: "00E38182", expected: ptr("あ")},
	}
	for _, testDef := range testDefs {
		assert.Equal(t, testDef.expected, decodeMessage(testDef.raw), "raw %q", testDef.raw)
	}
}

func TestDecodeAddress(t *testing.T) {
	assert.Equal(t, "", decodeAddress(""))
	assert.Equal(
		t,
		"TAQNAFPBUJYXFKY6WXEALVGR2LPBNPMWE3THSEA",
		decodeAddress("9820D015E1A27172AB1EB5C805D4D1D2DE16BD9626E67910"),
	)
	// Alias or malformed values pass through
	assert.Equal(t, "abc", decodeAddress("abc"))
}

func TestOutcome(t *testing.T) {
	assert.Equal(t, "success", outcome(nil))
	assert.Equal(t, "rejected", outcome(&NodeRejectedError{Code: "x"}))
	assert.Equal(t, "timeout", outcome(ErrTimeout))
	assert.Equal(t, "unreachable", outcome(ErrNodeUnreachable))
}

func ptr(s string) *string {
	return &s
}
