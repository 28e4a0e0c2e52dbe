package goquery_test

import (
	"testing"

	"github.com/fwojciec/casedoc"
	"github.com/fwojciec/casedoc/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Ensure ListingParser implements casedoc.ListingParser at compile time.
var _ casedoc.ListingParser = (*goquery.ListingParser)(nil)

var electricOpen = casedoc.ListingView{Utility: casedoc.UtilityElectric, Status: casedoc.StatusOpen}

func TestListingParser_ParseListing(t *testing.T) {
	t.Parallel()

	t.Run("extracts valid case rows", func(t *testing.T) {
		t.Parallel()

		html := `<html><body><table>
<tr><th>Case</th><th>Company</th><th>Description</th></tr>
<tr><td><a href="/case/ABC-E-24-01">ABC-E-24-01</a></td><td>Test Utility</td><td>General rate case</td><td>03/15/2024</td></tr>
<tr><td><a href="/case/XYZ-E-23-07">XYZ-E-23-07</a></td><td>Other Power</td><td>Tariff update</td></tr>
</table></body></html>`

		p := goquery.NewListingParser()
		page, err := p.ParseListing(html, "https://puc.example.gov/electric/open", electricOpen)

		require.NoError(t, err)
		require.Len(t, page.Cases, 2)
		assert.Equal(t, &casedoc.Case{
			CaseNumber:  "ABC-E-24-01",
			Company:     "Test Utility",
			Description: "General rate case",
			ListingURL:  "https://puc.example.gov/case/ABC-E-24-01",
			Utility:     casedoc.UtilityElectric,
			Status:      casedoc.StatusOpen,
			DateFiled:   "03/15/2024",
		}, page.Cases[0])
		assert.Equal(t, "XYZ-E-23-07", page.Cases[1].CaseNumber)
		assert.Empty(t, page.Cases[1].DateFiled)
		assert.Empty(t, page.NextURL)
	})

	t.Run("skips rows without enough cells", func(t *testing.T) {
		t.Parallel()

		html := `<html><body><table>
<tr><td><a href="/case/ABC-E-24-01">ABC-E-24-01</a></td><td>Test Utility</td><td></td></tr>
</table></body></html>`

		p := goquery.NewListingParser()
		page, err := p.ParseListing(html, "https://puc.example.gov/", electricOpen)

		require.NoError(t, err)
		assert.Empty(t, page.Cases)
	})

	t.Run("skips rows without case number anchor", func(t *testing.T) {
		t.Parallel()

		html := `<html><body><table>
<tr><td>ABC-E-24-01</td><td>Test Utility</td><td>General rate case</td></tr>
<tr><td><a href="/case/1">Case one</a></td><td>Test Utility</td><td>General rate case</td></tr>
</table></body></html>`

		p := goquery.NewListingParser()
		page, err := p.ParseListing(html, "https://puc.example.gov/", electricOpen)

		require.NoError(t, err)
		assert.Empty(t, page.Cases)
	})

	t.Run("deduplicates case numbers", func(t *testing.T) {
		t.Parallel()

		html := `<html><body><table>
<tr><td><a href="/case/ABC-E-24-01">ABC-E-24-01</a></td><td>Test Utility</td><td>Rate case</td></tr>
<tr><td><a href="/case/ABC-E-24-01">ABC-E-24-01</a></td><td>Test Utility</td><td>Rate case</td></tr>
</table></body></html>`

		p := goquery.NewListingParser()
		page, err := p.ParseListing(html, "https://puc.example.gov/", electricOpen)

		require.NoError(t, err)
		assert.Len(t, page.Cases, 1)
	})

	t.Run("finds next page by rel", func(t *testing.T) {
		t.Parallel()

		html := `<html><body><div class="pagination"><a rel="next" href="?page=2">2</a></div></body></html>`

		p := goquery.NewListingParser()
		page, err := p.ParseListing(html, "https://puc.example.gov/electric/open", electricOpen)

		require.NoError(t, err)
		assert.Equal(t, "https://puc.example.gov/electric/open?page=2", page.NextURL)
	})

	t.Run("finds next page by link text", func(t *testing.T) {
		t.Parallel()

		html := `<html><body><a href="/electric/open?page=1">Prev</a> <a href="/electric/open?page=3">Next</a></body></html>`

		p := goquery.NewListingParser()
		page, err := p.ParseListing(html, "https://puc.example.gov/electric/open?page=2", electricOpen)

		require.NoError(t, err)
		assert.Equal(t, "https://puc.example.gov/electric/open?page=3", page.NextURL)
	})

	t.Run("ignores next link to another host", func(t *testing.T) {
		t.Parallel()

		html := `<html><body><a rel="next" href="https://elsewhere.example.com/page2">Next</a></body></html>`

		p := goquery.NewListingParser()
		page, err := p.ParseListing(html, "https://puc.example.gov/", electricOpen)

		require.NoError(t, err)
		assert.Empty(t, page.NextURL)
	})

	t.Run("rejects invalid base URL", func(t *testing.T) {
		t.Parallel()

		p := goquery.NewListingParser()
		_, err := p.ParseListing("<html></html>", "://bad", electricOpen)

		assert.Equal(t, casedoc.EINVALID, casedoc.ErrorCode(err))
	})
}

func TestListingParser_ParseFiledDate(t *testing.T) {
	t.Parallel()

	t.Run("reads table label", func(t *testing.T) {
		t.Parallel()

		html := `<html><body><table><tr><th>Date Filed</th><td>2024-03-15</td></tr></table></body></html>`

		assert.Equal(t, "2024-03-15", goquery.NewListingParser().ParseFiledDate(html))
	})

	t.Run("reads definition list label", func(t *testing.T) {
		t.Parallel()

		html := `<html><body><dl><dt>Filing Date:</dt><dd>March 15, 2024</dd></dl></body></html>`

		assert.Equal(t, "March 15, 2024", goquery.NewListingParser().ParseFiledDate(html))
	})

	t.Run("reads inline text", func(t *testing.T) {
		t.Parallel()

		html := `<html><body><p>This case was filed on 3/15/2024 by the company.</p></body></html>`

		assert.Equal(t, "3/15/2024", goquery.NewListingParser().ParseFiledDate(html))
	})

	t.Run("returns empty when absent", func(t *testing.T) {
		t.Parallel()

		assert.Empty(t, goquery.NewListingParser().ParseFiledDate(`<html><body><p>No date</p></body></html>`))
	})
}

func TestListingParser_ParseDocuments(t *testing.T) {
	t.Parallel()

	t.Run("assigns sections from headings", func(t *testing.T) {
		t.Parallel()

		html := `<html><body><div id="documents">
<h3>Company Filings</h3>
<ul>
<li><a href="/viewer?doc=1">Application</a></li>
<li><a href="/viewer?doc=2">Direct Testimony of Jane Doe</a></li>
</ul>
<h3>Staff Filings</h3>
<ul><li><a href="/viewer?doc=3">Staff Comments</a></li></ul>
<h3>Intervenor Filings</h3>
<ul><li><a href="/viewer?doc=4">Intervenor Testimony</a></li><li><a href="/viewer?doc=1#p2">Application</a></li></ul>
</div></body></html>`

		p := goquery.NewListingParser()
		docs, err := p.ParseDocuments(html, "https://puc.example.gov/case/ABC-E-24-01", "ABC-E-24-01")

		require.NoError(t, err)
		assert.Equal(t, []casedoc.DocumentRef{
			{CaseNumber: "ABC-E-24-01", ViewerURL: "https://puc.example.gov/viewer?doc=1", DisplayName: "Application", Section: casedoc.SectionCompany},
			{CaseNumber: "ABC-E-24-01", ViewerURL: "https://puc.example.gov/viewer?doc=2", DisplayName: "Direct Testimony of Jane Doe", Section: casedoc.SectionCompany},
			{CaseNumber: "ABC-E-24-01", ViewerURL: "https://puc.example.gov/viewer?doc=3", DisplayName: "Staff Comments", Section: casedoc.SectionStaff},
			{CaseNumber: "ABC-E-24-01", ViewerURL: "https://puc.example.gov/viewer?doc=4", DisplayName: "Intervenor Testimony", Section: casedoc.SectionIntervenor},
		}, docs)
	})

	t.Run("prefers data section attribute", func(t *testing.T) {
		t.Parallel()

		html := `<html><body><div class="case-documents">
<h3>All Filings</h3>
<div data-section="Staff"><a href="/viewer?doc=9">Staff Report</a></div>
</div></body></html>`

		p := goquery.NewListingParser()
		docs, err := p.ParseDocuments(html, "https://puc.example.gov/case/ABC-E-24-01", "ABC-E-24-01")

		require.NoError(t, err)
		require.Len(t, docs, 1)
		assert.Equal(t, casedoc.SectionStaff, docs[0].Section)
	})

	t.Run("skips navigation links inside the container", func(t *testing.T) {
		t.Parallel()

		html := `<html><body><div id="documents">
<a href="/cases?view=electric-open">Back to listing</a>
<a href="/case/ABC-E-24-01?sort=date">Sort by date</a>
<h3>Company Filings</h3>
<ul><li><a href="/viewer?doc=1">Application</a></li></ul>
</div></body></html>`

		p := goquery.NewListingParser()
		docs, err := p.ParseDocuments(html, "https://puc.example.gov/case/ABC-E-24-01", "ABC-E-24-01")

		require.NoError(t, err)
		require.Len(t, docs, 1)
		assert.Equal(t, "https://puc.example.gov/viewer?doc=1", docs[0].ViewerURL)
		assert.Equal(t, casedoc.SectionCompany, docs[0].Section)
	})

	t.Run("falls back to viewer-like links", func(t *testing.T) {
		t.Parallel()

		html := `<html><body>
<a href="/home">Home</a>
<a href="/files/order.pdf" title="Final Order"></a>
<a href="/DocumentViewer.aspx?id=5">Exhibit 5</a>
</body></html>`

		p := goquery.NewListingParser()
		docs, err := p.ParseDocuments(html, "https://puc.example.gov/case/ABC-E-24-01", "ABC-E-24-01")

		require.NoError(t, err)
		require.Len(t, docs, 2)
		assert.Equal(t, "Final Order", docs[0].DisplayName)
		assert.Equal(t, casedoc.SectionOther, docs[0].Section)
		assert.Equal(t, "https://puc.example.gov/DocumentViewer.aspx?id=5", docs[1].ViewerURL)
	})

	t.Run("returns nothing for page without documents", func(t *testing.T) {
		t.Parallel()

		p := goquery.NewListingParser()
		docs, err := p.ParseDocuments(`<html><body><p>None</p></body></html>`, "https://puc.example.gov/", "ABC-E-24-01")

		require.NoError(t, err)
		assert.Empty(t, docs)
	})
}
