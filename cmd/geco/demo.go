package main

import (
	"fmt"

	"github.com/chewxy/math32"
	"github.com/klyja/geco/common"
	"github.com/klyja/geco/engine"
	"github.com/klyja/geco/engine/model"
)

// latLon converts degrees of latitude and longitude to a point on the unit sphere, Y up.
func latLon(lat, lon float32) common.Vec3 {
	phi := lat * math32.Pi / 180
	lambda := lon * math32.Pi / 180
	return common.NewVec3(
		math32.Cos(phi)*math32.Sin(lambda),
		math32.Sin(phi),
		math32.Cos(phi)*math32.Cos(lambda),
	)
}

// buildDemo fills e with a 120 frame animation: a coastline drifting north and a territory that
// appears at frame 20, gains a western vertex at frame 60 and moves east until it disappears at frame 100.
func buildDemo(e engine.Engine) error {
	if err := e.SetName("Demo Borders"); err != nil {
		return err
	}
	if err := e.SetTotalFrames(120); err != nil {
		return err
	}

	coast, err := e.CreateFeature("Coastline", model.KindPolyline, 0, 119)
	if err != nil {
		return err
	}
	for i := 0; i < 8; i++ {
		lon := float32(-40 + i*10)
		start := latLon(10+float32(i%2)*4, lon)
		id, err := e.AddPoint(coast, fmt.Sprintf("coast-%d", i), 0, start.X, start.Y, start.Z)
		if err != nil {
			return err
		}
		end := latLon(25+float32(i%2)*4, lon+5)
		if err := e.AddKeyframe(coast, id, 119, end.X, end.Y, end.Z); err != nil {
			return err
		}
	}

	territory, err := e.CreateFeature("Territory", model.KindPolygon, 20, 100)
	if err != nil {
		return err
	}
	corners := [][2]float32{{-10, -20}, {-10, 0}, {-25, 0}, {-25, -20}}
	for i, c := range corners {
		start := latLon(c[0], c[1])
		id, err := e.AddPoint(territory, fmt.Sprintf("territory-%d", i), 20, start.X, start.Y, start.Z)
		if err != nil {
			return err
		}
		end := latLon(c[0], c[1]+30)
		if err := e.AddKeyframe(territory, id, 100, end.X, end.Y, end.Z); err != nil {
			return err
		}
	}

	bulge := latLon(-17, -13)
	if _, err := e.AddPoint(territory, "territory-bulge", 60, bulge.X, bulge.Y, bulge.Z); err != nil {
		return err
	}
	end := latLon(-17, 2)
	return e.AddKeyframe(territory, "territory-bulge", 100, end.X, end.Y, end.Z)
}
