// Package surface implements the host-owned drawing surface.
//
// A Surface is a fixed-size RGBA raster with the origin at the top-left and
// Y growing downward. The guest never addresses it directly; every mutation
// arrives through a capability call and takes effect immediately, so later
// calls draw over earlier ones.
//
// Shape primitives composite their colour source-over, with alpha as
// opacity. The pixel primitives (SetPixel, FillSpan, Blit) store colours
// verbatim. Everything is clipped to the surface bounds.
package surface
