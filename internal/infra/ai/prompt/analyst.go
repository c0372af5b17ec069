package prompt

import "fmt"

// GetAnalysisPrompt is the instruction sent alongside the DNA report images.
func GetAnalysisPrompt() string {
	return `As a world-class geneticist and medical expert, analyze the provided DNA report images and focus specifically on two key areas. Provide your response in clear, easy-to-read format without using markdown symbols like # * - or ** formatting.

ANALYSIS FOCUS:

SECTION 1: DISEASE PREDISPOSITION
Examine the genetic markers and identify any predispositions to:
- Cardiovascular diseases
- Diabetes risk
- Cancer predispositions
- Metabolic disorders
- Autoimmune conditions
- Mental health risks
- Bone and joint health issues
- Other significant health risks shown in the genetic profile

For each identified risk, provide:
- The specific genetic markers involved
- Risk level (low, moderate, high)
- Preventive measures and lifestyle recommendations
- When to seek medical screening

SECTION 2: MUSCLE CAPABILITY AND ATHLETIC PERFORMANCE
Analyze genetic markers related to:
- Muscle fiber composition (fast-twitch vs slow-twitch ratio)
- Strength and power potential
- Endurance capacity
- Recovery speed
- Injury susceptibility
- Response to different types of training

For muscle capabilities, provide:
- Natural athletic strengths based on genetics
- Optimal training approaches
- Sports or activities best suited for this genetic profile
- Recovery recommendations

Format your response using simple paragraphs and clear headings without any markdown symbols. Use plain text formatting only.`
}

// GetDietPrompt interpolates the user's profile into the diet plan instruction.
func GetDietPrompt(age, weight, height string) string {
	return fmt.Sprintf(`As a certified nutritionist and dietitian, create a personalized basic diet plan for a person with the following characteristics:

Age: %s years
Weight: %s kg
Height: %s cm

Please provide:

1. **Daily Caloric Needs**: Calculate BMR and daily caloric requirements
2. **Macronutrient Breakdown**: Optimal protein, carbs, and fat percentages
3. **Meal Structure**: Suggested meal timing and portion sizes
4. **Food Recommendations**: 
   - 10 recommended foods for this profile
   - 5 foods to limit or avoid
5. **Sample Daily Menu**: 
   - Breakfast, lunch, dinner, and 2 snacks
   - Include approximate calories per meal
6. **Hydration**: Daily water intake recommendations
7. **Special Considerations**: Any specific advice based on age and body composition

Format the response in clear sections with bullet points for easy reading.`, age, weight, height)
}
