package main

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"
)

// Quiz board content. The server never looks inside these beyond serving them
// to the host view; which questions have been answered is tracked client-side.

type Question struct {
	Q string `json:"q"`
	A string `json:"a"`
}

type Round struct {
	Name       string                      `json:"name"`
	Categories []string                    `json:"categories"`
	Questions  map[string]map[int]Question `json:"questions"`
}

var pointValues = []int{10, 20, 30, 40, 50}

var rounds = []Round{
	{
		Name: "Round 1",
		Categories: []string{
			"Mix & Match",
			"Almost Twins",
			"Local@Seattle",
			"Love Actually",
			"Family Frames",
		},
		Questions: map[string]map[int]Question{
			"Mix & Match": {
				10: {Q: "SILENT", A: "LISTEN"},
				20: {Q: "DORMITORY", A: "DIRTY ROOM"},
				30: {Q: "ELEVEN PLUS TWO", A: "TWELVE PLUS ONE"},
				40: {Q: "THE EYES", A: "THEY SEE"},
				50: {Q: "A DECIMAL POINT", A: "I'M A DOT IN PLACE"},
			},
			"Almost Twins": {
				10: {Q: "Word 1: A sweet, juicy fruit with yellow or green skin that grows on trees\n\nWord 2: A smooth, round, lustrous gem formed within the shell of an oyster", A: "PEAR & PEARL"},
				20: {Q: "Word 1: To perceive sounds through the ear\n\nWord 2: A hollow muscular organ that pumps blood; the center of emotions", A: "HEAR & HEART"},
				30: {Q: "Word 1: A competition of speed\n\nWord 2: Elegance or beauty of form; a prayer said before a meal", A: "RACE & GRACE"},
				40: {Q: "Word 1: A strong feeling of annoyance, displeasure, or hostility\n\nWord 2: The possibility of suffering harm or injury; a threat or risk", A: "ANGER & DANGER"},
				50: {Q: "Word 1: A sound expressing amusement or mirth\n\nWord 2: The killing of a large number of people or animals in a cruel or violent way", A: "LAUGHTER & SLAUGHTER"},
			},
			"Local@Seattle": {
				10: {Q: "This Seattle grunge band's frontman Kurt Cobain became a 90s icon. Name the band.", A: "Nirvana"},
				20: {Q: "This 1993 romantic comedy starring Tom Hanks and Meg Ryan made the Space Needle iconic worldwide. Name the movie.", A: "Sleepless in Seattle"},
				30: {Q: "I'm a giant sculpture living under a bridge in Fremont, clutching a real Volkswagen Beetle in my left hand. What am I called?", A: "Fremont Troll"},
				40: {Q: "This teen movie starring Heath Ledger and Julia Stiles, a modern take on 'The Taming of the Shrew', was filmed around Seattle and Tacoma in 1999. Name the film.", A: "10 Things I Hate About You"},
				50: {Q: "The Space Needle's rotating restaurant completes one full rotation in how many minutes?", A: "45 minutes"},
			},
			"Love Actually": {
				10: {Q: "Two parallel love stories set decades apart explore how romance has evolved from the 1960s to modern times. (2009)", A: "Love Aaj Kal"},
				20: {Q: "A serial dater's life philosophy crumbles when he meets someone who challenges everything he teaches other men about relationships. (2011)", A: "Crazy, Stupid, Love"},
				30: {Q: "A charming pharmaceutical sales rep and a patient with a degenerative disease enter a volatile relationship. (2010)", A: "Love and Other Drugs"},
				40: {Q: "A young widow receives guidance from beyond the grave through pre-written messages, also a famous book. (2007)", A: "P.S. I Love You"},
				50: {Q: "When her most private confessions are unexpectedly delivered to five recipients, a teenager must navigate the social chaos. (2018)", A: "To All the Boys I've Loved Before"},
			},
			"Family Frames": {
				10: {Q: "Father and son appeared in this 2005 crime comedy where the father played a relentless police officer chasing two con artists across India.", A: "Bunty Aur Babli"},
				20: {Q: "In this 2011 musical romance about a struggling musician's rise, a grandson and his legendary grandfather from the Kapoor dynasty both appeared.", A: "Rockstar"},
				30: {Q: "Real-life brothers from the Khan family both appeared in this 2008 comedy where the protagonist receives divine powers.", A: "God Tussi Great Ho"},
				40: {Q: "Real-life mother and daughter appeared in this 2018 espionage thriller set during the 1971 Indo-Pak war.", A: "Raazi"},
				50: {Q: "These real-life half-brothers both appeared in this gritty 2016 film exposing Punjab's drug crisis.", A: "Udta Punjab"},
			},
		},
	},
	{
		Name: "Round 2",
		Categories: []string{
			"Connect the Dots",
			"Matter of Fact",
			"Brand ki Baat",
			"Almost Wonders",
			"99 Flashback",
		},
		Questions: map[string]map[int]Question{
			"Connect the Dots": {
				10: {Q: "Washington, Lincoln, Jefferson, Roosevelt", A: "Mount Rushmore"},
				20: {Q: "Caesar, Cobb, Greek, Waldorf", A: "Salads"},
				30: {Q: "Scarlet, Mustard, Plum, Peacock", A: "Cluedo characters"},
				40: {Q: "Saffron, Caviar, Truffles, Kobe Beef", A: "Luxury food items"},
				50: {Q: "New York City, Beehives, Playing cards, Chess", A: "Queens"},
			},
			"Matter of Fact": {
				10: {Q: "Ancient Romans used this tin-copper alloy for coins and weapons; today it's the metal behind Olympic third-place medals and church bells.", A: "Bronze"},
				20: {Q: "This non-stick coating, discovered accidentally by a DuPont chemist in 1938, revolutionized cookware.", A: "Teflon"},
				30: {Q: "This iron-carbon alloy is beloved by chefs for its heat retention and natural non-stick surface when seasoned.", A: "Cast iron"},
				40: {Q: "This lightweight material revolutionized aviation in 1906, named after a German town near Düsseldorf. The Hindenburg's framework was built from it.", A: "Duralumin"},
				50: {Q: "Cardiologists thread collapsed tubes into arteries that expand at body temperature; orthodontists use wires of it. It 'remembers' a programmed shape.", A: "Nitinol"},
			},
			"Brand ki Baat": {
				10: {Q: "Taaza Ho Le", A: "Brooke Bond Taaza"},
				20: {Q: "Desh Ki Dhadkan", A: "Hero Honda"},
				30: {Q: "Wires that don't catch fires", A: "Havells"},
				40: {Q: "Thodi si pet puja", A: "Perk"},
				50: {Q: "Badhti ka naam zindagi", A: "Axis Bank"},
			},
			"Almost Wonders": {
				10: {Q: "This colossal copper statue, a gift from France to America in 1886, stands on an island in New York Harbor.", A: "Statue of Liberty"},
				20: {Q: "This leaning bell tower in Italy began tilting during construction in the 12th century due to soft ground.", A: "Leaning Tower of Pisa"},
				30: {Q: "This iconic white opera house with sail-like shells sits on Sydney Harbor, opened in 1973.", A: "Sydney Opera House"},
				40: {Q: "Ancient stone circle in England, over 4,000 years old, with stones weighing up to 25 tons transported from 150 miles away.", A: "Stonehenge"},
				50: {Q: "The largest temple complex in the world, covering over 400 acres in Cambodia, built by King Suryavarman II.", A: "Angkor Wat"},
			},
			"99 Flashback": {
				10: {Q: "This Canadian company launched a wireless device that made mobile email accessible for the first time.", A: "BlackBerry"},
				20: {Q: "A high-altitude conflict erupted in the Himalayas when infiltrators crossed the Line of Control; India launched Operation Vijay.", A: "Kargil War"},
				30: {Q: "This 1999 film explored anti-consumerism through an underground movement whose famous first rule made people talk about it endlessly.", A: "Fight Club"},
				40: {Q: "NATO conducted a 78-day bombing campaign against Yugoslavia to stop ethnic cleansing in this region.", A: "Kosovo"},
				50: {Q: "The world braced for catastrophe as computer systems that couldn't process a date change threatened banking and infrastructure at midnight on December 31st.", A: "Y2K bug"},
			},
		},
	},
}

type roundsResponse struct {
	PointValues []int   `json:"pointValues"`
	Rounds      []Round `json:"rounds"`
}

func serveRounds(cfg *Config, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		startTime := time.Now()

		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.Header().Set("Cache-Control", "public, max-age=3600")
		securityHeaders(cfg, w)

		data, err := json.Marshal(roundsResponse{
			PointValues: pointValues,
			Rounds:      rounds,
		})
		if err != nil {
			errs <- err

			return
		}

		written, err := w.Write(data)
		if err != nil {
			errs <- err

			return
		}

		logf(cfg, "SERVE: Quiz rounds (%s) to %s in %s",
			humanReadableSize(int64(written)),
			realIP(r),
			time.Since(startTime).Round(time.Microsecond),
		)
	}
}
