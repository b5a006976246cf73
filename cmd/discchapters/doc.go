// Command discchapters prints chapter durations for Blu-ray playlists and DVD
// title sets.
//
//	discchapters show /mnt/disc
//	discchapters show BDMV/PLAYLIST/00800.mpls --rows 2-4
//	discchapters scan /mnt/disc --format json
//	discchapters config init
//	discchapters cache list
package main
