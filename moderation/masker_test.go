package moderation

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func Test_Mask_Replaces_Forbidden_Words(t *testing.T) {
	req := require.New(t)

	masker, err := NewMasker([]string{"heck"}, '*')
	req.NoError(err)

	req.Equal("what the ****", masker.Mask("what the heck"))
	req.Equal("what the ****!", masker.Mask("what the HECK!"))
	req.Equal("all quiet here", masker.Mask("all quiet here"))
}

func Test_Mask_Catches_Split_Words(t *testing.T) {
	req := require.New(t)

	masker, err := NewMasker([]string{"heck"}, '#')
	req.NoError(err)

	req.Equal("#######", masker.Mask("h e c k"))
}

func Test_Nil_Masker_Passes_Text_Through(t *testing.T) {
	req := require.New(t)

	var masker *Masker
	req.Equal("anything goes", masker.Mask("anything goes"))
}
