// Package coxeter describes Coxeter groups and their finite quotients in the
// notation used to configure tilings.
//
// A [Schlafli] symbol such as {7,3} fixes the Coxeter relations. Extra
// relations written as "0 2 1;8" close an infinite group into a finite
// quotient, and a subgroup such as "0 1" picks out the stabilizer of a tile.
// [Tiling.Quotient] enumerates both the element group and the tile group and
// links them with an inverse map:
//
//	s, _ := coxeter.DefaultSettings(3) // {7,3}, (0 2 1)^8, subgroup 0 1
//	t, err := coxeter.NewTiling(s)
//	if err != nil {
//	    return err
//	}
//	q, err := t.Quotient(500)
//	// q.Elements.PointCount() == 336, q.Cosets.PointCount() == 24
package coxeter
