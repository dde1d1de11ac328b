package entry

// ApplyDeflection rewrites the future portion of the trajectory in response
// to a steering input. Samples at or before cutTime are untouched. Each later
// sample is displaced along a fixed offset direction (built from the lateral
// and radial components in the local frame of the cut sample) by a linear
// ramp growing from zero at the cut to finalPercent of the sample's distance
// from the cut at the last sample.
//
// The derived-field recomputation runs strictly after all displacements, in
// ascending index order: each recomputed velocity differences against the
// already-recomputed predecessor.
func (traj *Trajectory) ApplyDeflection(cutTime, lateral, radial, finalPercent float64) {
	n := len(traj.samples)
	cut := traj.indexAtOrBefore(cutTime)
	if n < 2 || cut >= n-1 {
		return
	}

	cutSample := traj.samples[cut]
	up := Unit(cutSample.Position)
	vDir := Unit(cutSample.Velocity)
	horizontal := Unit(Cross(vDir, up))
	if Norm(horizontal) < zeroTol {
		horizontal = orthogonalTo(up)
	}
	offset := Unit(add(scaled(horizontal, lateral), scaled(up, radial)))
	if Norm(offset) < zeroTol {
		return
	}

	for i := cut + 1; i < n; i++ {
		percent := finalPercent * float64(i-cut) / float64(n-1-cut)
		d := distance(traj.samples[i].Position, cutSample.Position) * percent
		traj.samples[i].Position = add(traj.samples[i].Position, scaled(offset, d))
	}

	// Recomputation pass. The first mutated sample retains its pre-mutation
	// velocity: it has no recomputed predecessor to difference against.
	for i := cut + 1; i < n; i++ {
		s := &traj.samples[i]
		s.Altitude = Norm(s.Position) - traj.bodyRadius
		if i > cut+1 {
			prev := traj.samples[i-1]
			dt := s.Time - prev.Time
			s.Velocity = scaled(sub(s.Position, prev.Position), 1/dt)
		}
		s.VelocityMag = Norm(s.Velocity)
		s.DistToTarget = traj.distToTarget(s.Position)
	}
}
