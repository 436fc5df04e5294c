// Package passes renders boarding pass images.
//
// A pass is the base image with the member's avatar composited at a fixed
// offset, the project template layered on top and the upper-cased Twitter
// handle drawn in. Images come from an AssetStore, either a local directory
// or an S3-compatible bucket.
package passes
