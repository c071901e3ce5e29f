package catalog_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/okian/peerbench/internal/domain/catalog"
	"github.com/okian/peerbench/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestDefaultCatalog(t *testing.T) {
	Convey("Given the embedded catalog", t, func() {
		c := catalog.Default()

		Convey("Then it defines metrics in declaration order", func() {
			keys := c.Keys()
			So(len(keys), ShouldBeGreaterThan, 5)
			So(keys[0], ShouldEqual, "program_effectiveness")
			So(c.Order("program_effectiveness"), ShouldEqual, 0)
			So(c.Order("unknown_metric"), ShouldEqual, len(keys))
		})

		Convey("Then every metric uses the 0-100 scale", func() {
			for _, m := range c.Metrics() {
				So(m.ValidRange.Min, ShouldEqual, 0)
				So(m.ValidRange.Max, ShouldEqual, 100)
				So(m.Category, ShouldNotBeEmpty)
			}
		})

		Convey("Then lookup tables resolve known metrics", func() {
			So(c.GapType("data_quality"), ShouldEqual, model.GapTypeSystem)
			So(c.Addressability("data_quality"), ShouldEqual, model.AddressEasy)
			qw, sa := c.Actions("data_quality")
			So(qw, ShouldContain, "standardize_intake_forms")
			So(sa, ShouldContain, "implement_central_data_system")
		})

		Convey("Then unknown metrics fall back to process and moderate", func() {
			So(c.GapType("mystery"), ShouldEqual, model.GapTypeProcess)
			So(c.Addressability("mystery"), ShouldEqual, model.AddressModerate)
			qw, sa := c.Actions("mystery")
			So(qw, ShouldBeEmpty)
			So(sa, ShouldBeEmpty)
		})

		Convey("Then returned action slices are copies", func() {
			qw, _ := c.Actions("data_quality")
			qw[0] = "mutated"
			again, _ := c.Actions("data_quality")
			So(again[0], ShouldEqual, "standardize_intake_forms")
		})

		Convey("Then sectors are validated", func() {
			So(c.HasSector("education"), ShouldBeTrue)
			So(c.HasSector("space_exploration"), ShouldBeFalse)
			So(c.Sectors(), ShouldContain, "health")
		})
	})
}

func TestLoad(t *testing.T) {
	Convey("Given custom catalog documents", t, func() {
		Convey("When the document is valid", func() {
			doc := `
sectors: [health]
metrics:
  - key: wait_time
    name: Wait Time
    category: access
    valid_range: {min: 0, max: 100}
`
			c, err := catalog.Load(strings.NewReader(doc))

			Convey("Then defaults fill missing classifications", func() {
				So(err, ShouldBeNil)
				So(c.Has("wait_time"), ShouldBeTrue)
				So(c.GapType("wait_time"), ShouldEqual, model.GapTypeProcess)
				So(c.Addressability("wait_time"), ShouldEqual, model.AddressModerate)
				So(c.Category("wait_time"), ShouldEqual, "access")
			})
		})

		Convey("When a metric key is duplicated", func() {
			doc := `
metrics:
  - {key: a, category: x, valid_range: {min: 0, max: 100}}
  - {key: a, category: x, valid_range: {min: 0, max: 100}}
`
			_, err := catalog.Load(strings.NewReader(doc))
			So(errors.Is(err, catalog.ErrInvalidCatalog), ShouldBeTrue)
		})

		Convey("When a classification is unknown", func() {
			doc := `
metrics:
  - {key: a, category: x, valid_range: {min: 0, max: 100}, addressability: trivial}
`
			_, err := catalog.Load(strings.NewReader(doc))
			So(errors.Is(err, catalog.ErrInvalidCatalog), ShouldBeTrue)
		})

		Convey("When the valid range is empty", func() {
			doc := `
metrics:
  - {key: a, category: x, valid_range: {min: 10, max: 10}}
`
			_, err := catalog.Load(strings.NewReader(doc))
			So(errors.Is(err, catalog.ErrInvalidCatalog), ShouldBeTrue)
		})

		Convey("When the document has unknown fields", func() {
			doc := `
metrics:
  - {key: a, category: x, valid_range: {min: 0, max: 100}, weight: 3}
`
			_, err := catalog.Load(strings.NewReader(doc))
			So(errors.Is(err, catalog.ErrLoadCatalog), ShouldBeTrue)
		})

		Convey("When loading from a file", func() {
			path := filepath.Join(t.TempDir(), "catalog.yaml")
			So(os.WriteFile(path, []byte("metrics:\n  - {key: a, category: x, valid_range: {min: 0, max: 5}}\n"), 0o600), ShouldBeNil)
			c, err := catalog.LoadFile(path)
			So(err, ShouldBeNil)
			m, ok := c.Metric("a")
			So(ok, ShouldBeTrue)
			So(m.ValidRange.Max, ShouldEqual, 5)
			So(c.HasSector("anything"), ShouldBeTrue)
		})

		Convey("When the file does not exist", func() {
			_, err := catalog.LoadFile("/non/existent/catalog.yaml")
			So(errors.Is(err, catalog.ErrLoadCatalog), ShouldBeTrue)
		})
	})
}
