package ballistics

import "breachpoint/server/internal/weapons"

// rangeMultiplier maps hit distance to a damage multiplier. Shotgun pellets
// use the discrete bucket table; everything else decays continuously.
func (r *Resolver) rangeMultiplier(spec *weapons.HitscanSpec, def *weapons.Definition, distance float64) float64 {
	if len(spec.PelletBuckets) > 0 {
		return bucketMultiplier(spec.PelletBuckets, distance)
	}
	return continuousMultiplier(distance, def.Range, spec.FalloffStart, spec.FalloffMin)
}

// continuousMultiplier keeps full damage out to weaponRange*startFraction,
// then decays linearly to minFraction at weaponRange.
func continuousMultiplier(distance, weaponRange, startFraction, minFraction float64) float64 {
	if weaponRange <= 0 {
		return 1
	}
	if distance >= weaponRange {
		return minFraction
	}
	start := weaponRange * startFraction
	if distance <= start {
		return 1
	}
	frac := (distance - start) / (weaponRange - start)
	return 1 - frac*(1-minFraction)
}

// bucketMultiplier scores a distance against ascending range buckets.
// Distance beyond the last bucket contributes nothing.
func bucketMultiplier(buckets []weapons.RangeBucket, distance float64) float64 {
	for _, bucket := range buckets {
		if distance <= bucket.UpTo {
			return bucket.Multiplier
		}
	}
	return 0
}
