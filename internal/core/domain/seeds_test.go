package domain_test

import (
	"errors"
	"math"
	"testing"

	"github.com/ewilliams-labs/encore/internal/core/domain"
	. "github.com/smartystreets/goconvey/convey"
)

func vec(x float64) domain.FeatureVector {
	var v domain.FeatureVector
	for i := range v {
		v[i] = x
	}
	return v
}

func ingest(agg *domain.PlaylistAggregate, id string, v domain.FeatureVector) {
	if err := agg.AddTrack(domain.FeatureRecord{ID: id, Values: v.Map()}, id); err != nil {
		panic(err)
	}
}

func TestTrack_ComputeSimilarity(t *testing.T) {
	Convey("Given a track", t, func() {
		features := domain.FeatureVector{0.1, 0.7, 0.8, 0.0, 5, 3.2, 1, 0.05, 120, 0.4}
		track := domain.NewTrack("t1", features)

		Convey("It starts with a zero similarity", func() {
			So(track.Similarity(), ShouldEqual, 0.0)
		})

		Convey("When compared against an identical mean", func() {
			err := track.ComputeSimilarity(features)

			Convey("Then the similarity is exactly one", func() {
				So(err, ShouldBeNil)
				So(track.Similarity(), ShouldEqual, 1.0)
			})
		})

		Convey("When compared against a diverging mean", func() {
			mean := features
			mean[8] = 60

			err := track.ComputeSimilarity(mean)

			Convey("Then the similarity follows the difference ratio", func() {
				var diff, total float64
				for i := range mean {
					diff += math.Abs(mean[i] - features[i])
					total += mean[i] + features[i]
				}
				So(err, ShouldBeNil)
				So(track.Similarity(), ShouldAlmostEqual, 1-diff/total, 1e-12)
				So(track.Similarity(), ShouldBeLessThan, 1.0)
			})
		})

		Convey("When both the track and the mean are silent", func() {
			silent := domain.NewTrack("quiet", vec(0))
			err := silent.ComputeSimilarity(vec(0))

			Convey("Then an arithmetic error is reported and the score kept", func() {
				So(errors.Is(err, domain.ErrArithmetic), ShouldBeTrue)
				So(silent.Similarity(), ShouldEqual, 0.0)
			})
		})
	})
}

func TestSelectSeeds(t *testing.T) {
	Convey("Given the three-track scenario", t, func() {
		agg := domain.NewPlaylistAggregate("pl-1")
		ingest(agg, "t1", vec(1))
		ingest(agg, "t2", vec(0))
		ingest(agg, "t3", vec(1))

		Convey("The running mean halves towards each new track", func() {
			So(agg.MeanFeatures(), ShouldResemble, vec(0.625))
		})

		Convey("When seeds are selected", func() {
			seeds, err := domain.SelectSeeds(agg, domain.DefaultSeedCount)

			Convey("Then every track is returned, fully ranked", func() {
				So(err, ShouldBeNil)
				So(seeds.IDs(), ShouldResemble, []string{"t1", "t3", "t2"})
				So(seeds.Unscored, ShouldBeEmpty)
			})

			Convey("And the scores follow the similarity formula", func() {
				So(seeds.Tracks[1].Similarity(), ShouldAlmostEqual, 1-3.75/16.25, 1e-12)
				So(seeds.Tracks[2].Similarity(), ShouldEqual, 0.0)
			})
		})
	})

	Convey("Given a playlist larger than the seed count", t, func() {
		agg := domain.NewPlaylistAggregate("pl-2")
		ids := []string{"a", "b", "c", "d", "e", "f", "g", "h"}
		levels := []float64{0.9, 0.1, 0.5, 0.5, 0.2, 0.5, 0.8, 0.5}
		for i, id := range ids {
			ingest(agg, id, vec(levels[i]))
		}

		Convey("When five seeds are selected", func() {
			seeds, err := domain.SelectSeeds(agg, 5)

			Convey("Then the top five are returned with ties in ingestion order", func() {
				So(err, ShouldBeNil)
				So(seeds.Tracks, ShouldHaveLength, 5)
				for i := 1; i < len(seeds.Tracks); i++ {
					So(seeds.Tracks[i-1].Similarity(), ShouldBeGreaterThanOrEqualTo, seeds.Tracks[i].Similarity())
				}
				ranked := agg.RankedTracks()
				So(seeds.IDs(), ShouldResemble, []string{
					ranked[0].ID(), ranked[1].ID(), ranked[2].ID(), ranked[3].ID(), ranked[4].ID(),
				})
			})
		})

		Convey("When a non-positive count is requested", func() {
			seeds, err := domain.SelectSeeds(agg, 0)

			Convey("Then the default seed count applies", func() {
				So(err, ShouldBeNil)
				So(seeds.Tracks, ShouldHaveLength, domain.DefaultSeedCount)
			})
		})
	})

	Convey("Given tracks with equal similarity", t, func() {
		agg := domain.NewPlaylistAggregate("pl-3")
		for _, id := range []string{"first", "second", "third"} {
			ingest(agg, id, vec(0.5))
		}

		Convey("Ranking keeps ingestion order", func() {
			seeds, err := domain.SelectSeeds(agg, 5)
			So(err, ShouldBeNil)
			So(seeds.IDs(), ShouldResemble, []string{"first", "second", "third"})
		})
	})

	Convey("Given an empty playlist", t, func() {
		agg := domain.NewPlaylistAggregate("empty")

		Convey("Seed selection fails with insufficient data", func() {
			_, err := domain.SelectSeeds(agg, 5)
			So(errors.Is(err, domain.ErrInsufficientData), ShouldBeTrue)
		})
	})

	Convey("Given a playlist whose mean and tracks are all silent", t, func() {
		agg := domain.NewPlaylistAggregate("silent")
		ingest(agg, "s1", vec(0))
		ingest(agg, "s2", vec(0))

		Convey("Tracks are reported unscored and ranked last", func() {
			seeds, err := domain.SelectSeeds(agg, 5)
			So(err, ShouldBeNil)
			So(seeds.Unscored, ShouldResemble, []string{"s1", "s2"})
			So(seeds.IDs(), ShouldResemble, []string{"s1", "s2"})
			So(math.IsInf(seeds.Tracks[0].Similarity(), -1), ShouldBeTrue)
		})
	})
}
