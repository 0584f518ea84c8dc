// Package kmeans implements center seeding and Lloyd's k-means clustering.
//
// Used internally by the k-means tree (Lloyd refinement over coordinates)
// and the hierarchical clustering forest (seeding over arbitrary metrics).
package kmeans
