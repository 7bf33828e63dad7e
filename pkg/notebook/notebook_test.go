package notebook

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsNotebook(t *testing.T) {
	assert.True(t, IsNotebook("analysis.ipynb"))
	assert.True(t, IsNotebook("deep/nested/Analysis.IPYNB"))
	assert.False(t, IsNotebook("analysis.py"))
}

func TestNormalize_CellsInOrder(t *testing.T) {
	data := []byte(`{
		"cells": [
			{"cell_type": "markdown", "source": ["# Title\n", "Intro text."]},
			{"cell_type": "code", "source": ["import os\n", "print(os.getcwd())"]}
		],
		"metadata": {"kernelspec": {"language": "python"}}
	}`)

	out, err := Normalize(data)
	require.NoError(t, err)
	assert.Equal(t, "# Title\nIntro text.\n\n```python\nimport os\nprint(os.getcwd())\n```", out)
}

func TestNormalize_DefaultsKernelLanguage(t *testing.T) {
	data := []byte(`{"cells": [{"cell_type": "code", "source": "1 + 1"}]}`)

	out, err := Normalize(data)
	require.NoError(t, err)
	assert.Equal(t, "```python\n1 + 1\n```", out)
}

func TestNormalize_DeclaredKernelLanguage(t *testing.T) {
	data := []byte(`{
		"cells": [{"cell_type": "code", "source": "summary(df)"}],
		"metadata": {"kernelspec": {"language": "r"}}
	}`)

	out, err := Normalize(data)
	require.NoError(t, err)
	assert.Equal(t, "```r\nsummary(df)\n```", out)
}

func TestNormalize_SkipsEmptyCells(t *testing.T) {
	data := []byte(`{
		"cells": [
			{"cell_type": "code", "source": []},
			{"cell_type": "markdown", "source": "   "},
			{"cell_type": "code", "source": "x = 1"}
		]
	}`)

	out, err := Normalize(data)
	require.NoError(t, err)
	assert.Equal(t, "```python\nx = 1\n```", out)
}

func TestNormalize_RawCellsTreatedAsCode(t *testing.T) {
	data := []byte(`{"cells": [{"cell_type": "raw", "source": "raw text"}]}`)

	out, err := Normalize(data)
	require.NoError(t, err)
	assert.Equal(t, "```python\nraw text\n```", out)
}

func TestNormalize_MalformedNotebook(t *testing.T) {
	_, err := Normalize([]byte("{not json"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "malformed notebook")
}

func TestNormalize_NoCells(t *testing.T) {
	out, err := Normalize([]byte(`{"cells": []}`))
	require.NoError(t, err)
	assert.Empty(t, out)
}
