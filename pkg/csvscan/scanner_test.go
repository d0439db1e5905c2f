package csvscan_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/redsum/redsum/pkg/csvscan"
)

func TestScan_EmptyInputIsFatal(t *testing.T) {
	t.Parallel()

	_, err := csvscan.Scan("")
	require.ErrorIs(t, err, csvscan.ErrNoHeader)
}

func TestScan_HeaderOnly(t *testing.T) {
	t.Parallel()

	doc, err := csvscan.Scan("id,date,body\n")
	require.NoError(t, err)

	assert.Equal(t, []string{"id", "date", "body"}, doc.Header)
	assert.Empty(t, doc.Rows)
}

func TestScan_SimpleRows(t *testing.T) {
	t.Parallel()

	doc, err := csvscan.Scan("a,b\n1,2\n3,4\n")
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "b"}, doc.Header)
	assert.Equal(t, [][]string{{"1", "2"}, {"3", "4"}}, doc.Rows)
}

func TestScan_CRLFNormalized(t *testing.T) {
	t.Parallel()

	doc, err := csvscan.Scan("a,b\r\n1,2\r\n")
	require.NoError(t, err)

	assert.Equal(t, [][]string{{"1", "2"}}, doc.Rows)
}

func TestScan_QuotedFieldWithDelimiterNewlineAndEscapedQuote(t *testing.T) {
	t.Parallel()

	doc, err := csvscan.Scan("body\n\"a,b\nc\"\"d\"\n")
	require.NoError(t, err)

	require.Len(t, doc.Rows, 1)
	assert.Equal(t, []string{"a,b\nc\"d"}, doc.Rows[0])
}

func TestScan_MidFieldQuoteIsLiteral(t *testing.T) {
	t.Parallel()

	doc, err := csvscan.Scan("a,b\nit\"s,fine\n")
	require.NoError(t, err)

	assert.Equal(t, [][]string{{"it\"s", "fine"}}, doc.Rows)
}

func TestScan_EmptyQuotedField(t *testing.T) {
	t.Parallel()

	doc, err := csvscan.Scan("a,b\n\"\",x\n")
	require.NoError(t, err)

	assert.Equal(t, [][]string{{"", "x"}}, doc.Rows)
}

func TestScan_TrailingRecordWithoutNewline(t *testing.T) {
	t.Parallel()

	doc, err := csvscan.Scan("a,b\n1,2")
	require.NoError(t, err)

	assert.Equal(t, [][]string{{"1", "2"}}, doc.Rows)
}

func TestScan_TrailingComma(t *testing.T) {
	t.Parallel()

	doc, err := csvscan.Scan("a,b\n1,")
	require.NoError(t, err)

	assert.Equal(t, [][]string{{"1", ""}}, doc.Rows)
}

func TestScan_ShortRowIsPreserved(t *testing.T) {
	t.Parallel()

	// Rows shorter than the header are kept; the routing layer decides
	// whether they are malformed.
	doc, err := csvscan.Scan("a,b,c\n1,2\n")
	require.NoError(t, err)

	assert.Equal(t, [][]string{{"1", "2"}}, doc.Rows)
}

func TestDocument_Column(t *testing.T) {
	t.Parallel()

	doc, err := csvscan.Scan("id,date,body\n")
	require.NoError(t, err)

	idx, err := doc.Column("date")
	require.NoError(t, err)
	assert.Equal(t, 1, idx)

	_, err = doc.Column("direction")
	require.ErrorIs(t, err, csvscan.ErrColumnMissing)
	assert.Contains(t, err.Error(), "direction")
}
