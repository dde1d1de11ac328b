package entry

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/soniakeys/meeus/julian"
)

// WriteCSV writes the trajectory as the plain ordered export table:
// time,x,y,z,vx,vy,vz,altitude,bankAngle. Positions in meters, velocities in
// meters per second, bank angle in degrees.
func WriteCSV(w io.Writer, traj *Trajectory) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"time", "x", "y", "z", "vx", "vy", "vz", "altitude", "bankAngle"}); err != nil {
		return err
	}
	for _, s := range traj.Samples() {
		record := []string{
			strconv.FormatFloat(s.Time, 'f', -1, 64),
			strconv.FormatFloat(s.Position[0], 'f', -1, 64),
			strconv.FormatFloat(s.Position[1], 'f', -1, 64),
			strconv.FormatFloat(s.Position[2], 'f', -1, 64),
			strconv.FormatFloat(s.Velocity[0], 'f', -1, 64),
			strconv.FormatFloat(s.Velocity[1], 'f', -1, 64),
			strconv.FormatFloat(s.Velocity[2], 'f', -1, 64),
			strconv.FormatFloat(s.Altitude, 'f', -1, 64),
			strconv.FormatFloat(s.BankAngle, 'f', -1, 64),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// InterpolatedState is one record of the xyzv interpolated-states export.
type InterpolatedState struct {
	JD       float64
	Position []float64
	Velocity []float64
}

// ToText converts to text for written output.
func (i InterpolatedState) ToText() string {
	return fmt.Sprintf("%f %f %f %f %f %f %f", i.JD, i.Position[0], i.Position[1], i.Position[2], i.Velocity[0], i.Velocity[1], i.Velocity[2])
}

// WriteXYZV writes the trajectory as an interpolated-states block. Each
// sample time is offset from the provided entry-interface epoch and stamped
// as a Julian date.
func WriteXYZV(w io.Writer, traj *Trajectory, epoch time.Time) error {
	header := fmt.Sprintf(`# Records are <jd> <x> <y> <z> <vel x> <vel y> <vel z>
#   Position in m
#   Velocity in m/sec
#   Entry interface (UTC): %s`, epoch.UTC())
	if _, err := io.WriteString(w, header); err != nil {
		return err
	}
	for _, s := range traj.Samples() {
		dt := epoch.Add(time.Duration(s.Time * float64(time.Second)))
		state := InterpolatedState{JD: julian.TimeToJD(dt), Position: s.Position, Velocity: s.Velocity}
		if _, err := io.WriteString(w, "\n"+state.ToText()); err != nil {
			return err
		}
	}
	_, err := io.WriteString(w, "\n")
	return err
}
